// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"strings"
)

// SelectableFile is a file accepted into a tool's selection.
type SelectableFile struct {
	// Name is the file name as provided by the picker or drop.
	Name string `json:"name" yaml:"name"`

	// MIMEType is the type reported for the file.
	MIMEType string `json:"mime_type" yaml:"mime_type"`

	// Data holds the file contents.
	Data []byte `json:"-" yaml:"-"`

	// OriginalIndex is the intake sequence number assigned on acceptance.
	OriginalIndex int `json:"original_index" yaml:"original_index"`
}

// Size returns the payload length in bytes.
func (f SelectableFile) Size() int {
	return len(f.Data)
}

// PendingArtifact is the output of a successful transformation, held by the
// release gate until it is released or discarded.
type PendingArtifact struct {
	// Payload holds the produced document or archive.
	Payload []byte `json:"-" yaml:"-"`

	// FileName is the suggested download name.
	FileName string `json:"file_name" yaml:"file_name"`

	// MIMEType is the payload type (application/pdf or application/zip).
	MIMEType string `json:"mime_type" yaml:"mime_type"`

	// ToolID names the tool that produced the artifact.
	ToolID ToolID `json:"tool_id" yaml:"tool_id"`

	// Note is an optional informational line about the result, such as the
	// size report of a compression run.
	Note string `json:"note,omitempty" yaml:"note,omitempty"`
}

var extensionTypes = map[string]string{
	".pdf":  MIMEPDF,
	".doc":  MIMEDoc,
	".docx": MIMEDocx,
	".zip":  MIMEZip,
}

// MIMETypeByName returns the MIME type for the extension of name, or ""
// when the extension is not one the tools know.
func MIMETypeByName(name string) string {
	return extensionTypes[strings.ToLower(filepath.Ext(name))]
}
