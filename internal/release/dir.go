// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package release writes released artifacts to a local directory. It is the
// releaser behind the command line tools.
package release

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pdfdesk/pkg/types"
)

// maxSuffix bounds the search for a free file name.
const maxSuffix = 1000

// Dir releases artifacts by writing them under a directory. Existing files
// are never overwritten; a numeric suffix is added instead.
type Dir struct {
	root string
}

// NewDir returns a releaser writing under root, creating it when needed.
func NewDir(root string) (*Dir, error) {
	if root == "" {
		root = "output"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", root, err)
	}
	return &Dir{root: root}, nil
}

// Root returns the output directory.
func (d *Dir) Root() string { return d.root }

// Release writes a's payload and returns the path it was written to.
func (d *Dir) Release(ctx context.Context, a types.PendingArtifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := filepath.Base(a.FileName)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("artifact has no usable file name: %q", a.FileName)
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < maxSuffix; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		path := filepath.Join(d.root, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("creating %s: %w", path, err)
		}
		if _, err := f.Write(a.Payload); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("writing %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("closing %s: %w", path, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("no free file name for %s in %s", name, d.root)
}
