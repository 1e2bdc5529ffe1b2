// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transform

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pdfdesk/internal/container"
	"github.com/pdiddy/pdfdesk/internal/errinfo"
	"github.com/pdiddy/pdfdesk/pkg/types"
)

// DefaultWordImage is the container image that converts a Word document on
// stdin into a PDF on stdout (LibreOffice in headless mode).
const DefaultWordImage = "pdfdesk/soffice:latest"

// pdfMagic is the header every PDF starts with.
var pdfMagic = []byte("%PDF-")

// Word converts .doc and .docx files to PDF by piping them through a
// converter container. It depends on a container.Runtime injected at
// construction time.
type Word struct {
	runtime container.Runtime
	image   string
}

// NewWord creates a converter that runs image on rt. It verifies that the
// image exists locally before returning; the error is an EnvironmentError so
// callers can disable the tool with a reason.
func NewWord(rt container.Runtime, image string) (*Word, error) {
	if image == "" {
		image = DefaultWordImage
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, errinfo.Environment(
			fmt.Sprintf("Word to PDF conversion needs the %s image in %s.", image, rt.Name()), err)
	}
	return &Word{runtime: rt, image: image}, nil
}

// Transform implements Adapter.
func (w *Word) Transform(ctx context.Context, req Request) (types.PendingArtifact, error) {
	if err := requireFiles(req, 1); err != nil {
		return types.PendingArtifact{}, err
	}
	src := req.Files[0]

	var out bytes.Buffer
	if err := w.runtime.Run(ctx, w.image, bytes.NewReader(src.Data), &out); err != nil {
		return types.PendingArtifact{}, fmt.Errorf("converting %s: %w", src.Name, err)
	}
	if !bytes.HasPrefix(out.Bytes(), pdfMagic) {
		return types.PendingArtifact{}, fmt.Errorf("converter produced no PDF for %s", src.Name)
	}

	name := filepath.Base(src.Name)
	return types.PendingArtifact{
		Payload:  out.Bytes(),
		FileName: strings.TrimSuffix(name, filepath.Ext(name)) + ".pdf",
		MIMEType: types.MIMEPDF,
		ToolID:   types.ToolWord,
	}, nil
}
