// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transform implements the document operations behind each tool.
// An Adapter takes the selected files plus the tool's secondary input and
// produces a PendingArtifact; it never touches the message surface or the
// release gate.
package transform

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pdfdesk/pkg/types"
)

// Request is the input of one transformation.
type Request struct {
	// Files is the selection in processing order.
	Files []types.SelectableFile

	// Input is the secondary input: the text to stamp for edit, the
	// password for protect. Empty for the other tools.
	Input string
}

// Adapter performs one tool's transformation.
type Adapter interface {
	Transform(ctx context.Context, req Request) (types.PendingArtifact, error)
}

// AdapterFunc adapts a function to the Adapter interface.
type AdapterFunc func(ctx context.Context, req Request) (types.PendingArtifact, error)

// Transform calls f.
func (f AdapterFunc) Transform(ctx context.Context, req Request) (types.PendingArtifact, error) {
	return f(ctx, req)
}

// Registry maps each tool to its adapter.
type Registry map[types.ToolID]Adapter

// NewRegistry wires the PDF operations of p and, when w is non-nil, the
// Word-to-PDF converter.
func NewRegistry(p *PDF, w *Word) Registry {
	r := Registry{
		types.ToolMerge:    AdapterFunc(p.Merge),
		types.ToolSplit:    AdapterFunc(p.Split),
		types.ToolCompress: AdapterFunc(p.Compress),
		types.ToolEdit:     AdapterFunc(p.Edit),
		types.ToolProtect:  AdapterFunc(p.Protect),
	}
	if w != nil {
		r[types.ToolWord] = w
	}
	return r
}

// Lookup returns the adapter registered for id.
func (r Registry) Lookup(id types.ToolID) (Adapter, error) {
	a, ok := r[id]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for tool %q", id)
	}
	return a, nil
}

// baseName strips the directory and a trailing extension (matched
// case-insensitively against ext) from name.
func baseName(name, ext string) string {
	name = filepath.Base(name)
	if len(name) >= len(ext) && strings.EqualFold(name[len(name)-len(ext):], ext) {
		return name[:len(name)-len(ext)]
	}
	return name
}

func requireFiles(req Request, n int) error {
	if len(req.Files) < n {
		return fmt.Errorf("need at least %d file(s), got %d", n, len(req.Files))
	}
	return nil
}
