// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// ToolID identifies one of the desk's tools.
type ToolID string

const (
	ToolMerge    ToolID = "merge"
	ToolSplit    ToolID = "split"
	ToolCompress ToolID = "compress"
	ToolEdit     ToolID = "edit"
	ToolProtect  ToolID = "protect"
	ToolWord     ToolID = "word"
)

// MIME types accepted by the tools.
const (
	MIMEPDF  = "application/pdf"
	MIMEDoc  = "application/msword"
	MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEZip  = "application/zip"
)

// Icon references rendered next to each selected file.
const (
	IconPDF  = "icon:pdf"
	IconWord = "icon:word"
)

// ToolConfiguration describes how a tool accepts files. It is built once per
// tool when a desk is constructed and never modified afterwards.
type ToolConfiguration struct {
	// ID is the tool identifier.
	ID ToolID `json:"id" yaml:"id"`

	// AllowedMIMETypes lists the MIME types the tool accepts.
	AllowedMIMETypes []string `json:"allowed_mime_types" yaml:"allowed_mime_types"`

	// RequiresSecondaryInput reports whether processing needs a text value
	// besides the files (text to add, password to apply).
	RequiresSecondaryInput bool `json:"requires_secondary_input" yaml:"requires_secondary_input"`

	// SecondaryInputLabel names the secondary input (e.g. "text-to-add").
	SecondaryInputLabel string `json:"secondary_input_label,omitempty" yaml:"secondary_input_label,omitempty"`

	// Icon is the icon reference shown next to each selected file.
	Icon string `json:"icon" yaml:"icon"`

	// ForceDisabled keeps the process action disabled regardless of selection.
	ForceDisabled bool `json:"force_disabled" yaml:"force_disabled"`

	// DisabledReason explains ForceDisabled to the user.
	DisabledReason string `json:"disabled_reason,omitempty" yaml:"disabled_reason,omitempty"`

	// Multi marks tools that keep an ordered sequence of files (merge).
	Multi bool `json:"multi" yaml:"multi"`
}

// MinSelection returns the number of files required to enable processing.
func (c ToolConfiguration) MinSelection() int {
	if c.Multi {
		return 2
	}
	return 1
}

// Allows reports whether mimeType is accepted by the tool.
func (c ToolConfiguration) Allows(mimeType string) bool {
	for _, t := range c.AllowedMIMETypes {
		if t == mimeType {
			return true
		}
	}
	return false
}

// ExpectedTypes renders the allowed types for user-facing messages, using the
// MIME subtype of each entry ("pdf", "msword").
func (c ToolConfiguration) ExpectedTypes() string {
	names := make([]string, len(c.AllowedMIMETypes))
	for i, t := range c.AllowedMIMETypes {
		if _, sub, ok := strings.Cut(t, "/"); ok {
			names[i] = sub
		} else {
			names[i] = t
		}
	}
	return strings.Join(names, " or ")
}

// Verb returns the imperative used in "Please select a file to <verb>.".
func (id ToolID) Verb() string {
	switch id {
	case ToolWord:
		return "convert"
	default:
		return string(id)
	}
}

// Past returns the past-tense label used in the release dialog title.
func (id ToolID) Past() string {
	switch id {
	case ToolMerge:
		return "Merged"
	case ToolSplit:
		return "Split"
	case ToolCompress:
		return "Compressed"
	case ToolEdit:
		return "Edited"
	case ToolProtect:
		return "Protected"
	case ToolWord:
		return "Converted"
	default:
		return strings.ToUpper(string(id[:1])) + string(id[1:]) + "ed"
	}
}

// ParseToolID converts a string into a known ToolID.
func ParseToolID(s string) (ToolID, bool) {
	id := ToolID(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllTools {
		if id == known {
			return id, true
		}
	}
	return "", false
}

// AllTools lists every tool in display order.
var AllTools = []ToolID{ToolMerge, ToolSplit, ToolCompress, ToolEdit, ToolProtect, ToolWord}

// DefaultTools returns the configuration of every tool. wordAvailable
// controls whether the Word-to-PDF tool can run; when false it is
// force-disabled with reason.
func DefaultTools(wordAvailable bool, reason string) map[ToolID]ToolConfiguration {
	pdfOnly := []string{MIMEPDF}
	tools := map[ToolID]ToolConfiguration{
		ToolMerge: {
			ID:               ToolMerge,
			AllowedMIMETypes: pdfOnly,
			Icon:             IconPDF,
			Multi:            true,
		},
		ToolSplit: {
			ID:               ToolSplit,
			AllowedMIMETypes: pdfOnly,
			Icon:             IconPDF,
		},
		ToolCompress: {
			ID:               ToolCompress,
			AllowedMIMETypes: pdfOnly,
			Icon:             IconPDF,
		},
		ToolEdit: {
			ID:                     ToolEdit,
			AllowedMIMETypes:       pdfOnly,
			RequiresSecondaryInput: true,
			SecondaryInputLabel:    "text-to-add",
			Icon:                   IconPDF,
		},
		ToolProtect: {
			ID:                     ToolProtect,
			AllowedMIMETypes:       pdfOnly,
			RequiresSecondaryInput: true,
			SecondaryInputLabel:    "password-input",
			Icon:                   IconPDF,
		},
		ToolWord: {
			ID:               ToolWord,
			AllowedMIMETypes: []string{MIMEDoc, MIMEDocx},
			Icon:             IconWord,
			ForceDisabled:    !wordAvailable,
			DisabledReason:   reason,
		},
	}
	return tools
}
