// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transform

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/pdiddy/pdfdesk/internal/errinfo"
	ptypes "github.com/pdiddy/pdfdesk/pkg/types"
)

// Stamp settings for the edit tool: Helvetica-Bold 30pt in #FA571C, placed
// 50pt in from the left and top edges of the first page.
const stampDescription = "font:Helvetica-Bold, points:30, fillcolor:#FA571C, pos:tl, off:50 -50, scale:1 abs, rot:0"

// aesKeyLength is the key size used by the protect tool.
const aesKeyLength = 256

func init() {
	// pdfcpu would otherwise create a config directory under the user's
	// home on first use.
	api.DisableConfigDir()
}

// PDF implements the pdfcpu-backed tools. The zero value is not usable;
// construct with NewPDF.
type PDF struct {
	now        func() time.Time
	countPages func(rs io.ReadSeeker, conf *model.Configuration) (int, error)
}

// PDFOption configures a PDF.
type PDFOption func(*PDF)

// WithClock replaces time.Now for the timestamps in output file names.
func WithClock(now func() time.Time) PDFOption {
	return func(p *PDF) { p.now = now }
}

// NewPDF creates the PDF tool set.
func NewPDF(opts ...PDFOption) *PDF {
	p := &PDF{now: time.Now, countPages: api.PageCount}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// conf returns a fresh pdfcpu configuration. pdfcpu records per-command
// state on the configuration, so one is never shared between calls.
func conf() *model.Configuration {
	c := model.NewDefaultConfiguration()
	c.ValidationMode = model.ValidationRelaxed
	return c
}

func (p *PDF) stamped(prefix string) string {
	return fmt.Sprintf("%s_%d.pdf", prefix, p.now().UnixMilli())
}

// pages returns the page count of data, rejecting documents without pages.
func (p *PDF) pages(f ptypes.SelectableFile, action string) (int, error) {
	n, err := p.countPages(bytes.NewReader(f.Data), conf())
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	if n == 0 {
		return 0, errinfo.Transformation(fmt.Sprintf("The selected PDF has no pages to %s.", action), nil)
	}
	return n, nil
}

// Merge concatenates every page of every file, in selection order.
func (p *PDF) Merge(ctx context.Context, req Request) (ptypes.PendingArtifact, error) {
	if err := requireFiles(req, 2); err != nil {
		return ptypes.PendingArtifact{}, err
	}
	readers := make([]io.ReadSeeker, len(req.Files))
	for i, f := range req.Files {
		readers[i] = bytes.NewReader(f.Data)
	}
	if err := ctx.Err(); err != nil {
		return ptypes.PendingArtifact{}, err
	}

	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, conf()); err != nil {
		return ptypes.PendingArtifact{}, fmt.Errorf("merging %d documents: %w", len(readers), err)
	}
	return ptypes.PendingArtifact{
		Payload:  out.Bytes(),
		FileName: p.stamped("merged_document"),
		MIMEType: ptypes.MIMEPDF,
		ToolID:   ptypes.ToolMerge,
	}, nil
}

// Split writes each page to its own single-page PDF and packages them in a
// ZIP archive named after the source.
func (p *PDF) Split(ctx context.Context, req Request) (ptypes.PendingArtifact, error) {
	if err := requireFiles(req, 1); err != nil {
		return ptypes.PendingArtifact{}, err
	}
	src := req.Files[0]
	n, err := p.pages(src, "split")
	if err != nil {
		return ptypes.PendingArtifact{}, err
	}
	base := baseName(src.Name, ".pdf")

	var archive bytes.Buffer
	zw := zip.NewWriter(&archive)
	for page := 1; page <= n; page++ {
		if err := ctx.Err(); err != nil {
			return ptypes.PendingArtifact{}, err
		}
		var one bytes.Buffer
		if err := api.Trim(bytes.NewReader(src.Data), &one, []string{strconv.Itoa(page)}, conf()); err != nil {
			return ptypes.PendingArtifact{}, fmt.Errorf("extracting page %d of %s: %w", page, src.Name, err)
		}
		w, err := zw.Create(fmt.Sprintf("%s_page_%d.pdf", base, page))
		if err != nil {
			return ptypes.PendingArtifact{}, fmt.Errorf("adding page %d to archive: %w", page, err)
		}
		if _, err := w.Write(one.Bytes()); err != nil {
			return ptypes.PendingArtifact{}, fmt.Errorf("adding page %d to archive: %w", page, err)
		}
	}
	if err := zw.Close(); err != nil {
		return ptypes.PendingArtifact{}, fmt.Errorf("finishing archive: %w", err)
	}

	return ptypes.PendingArtifact{
		Payload:  archive.Bytes(),
		FileName: base + "_split_pages.zip",
		MIMEType: ptypes.MIMEZip,
		ToolID:   ptypes.ToolSplit,
	}, nil
}

// Compress rewrites the document through pdfcpu's optimizer. The artifact
// note reports the size before and after.
func (p *PDF) Compress(ctx context.Context, req Request) (ptypes.PendingArtifact, error) {
	if err := requireFiles(req, 1); err != nil {
		return ptypes.PendingArtifact{}, err
	}
	src := req.Files[0]
	if err := ctx.Err(); err != nil {
		return ptypes.PendingArtifact{}, err
	}

	var out bytes.Buffer
	if err := api.Optimize(bytes.NewReader(src.Data), &out, conf()); err != nil {
		return ptypes.PendingArtifact{}, fmt.Errorf("optimizing %s: %w", src.Name, err)
	}
	return ptypes.PendingArtifact{
		Payload:  out.Bytes(),
		FileName: p.stamped("compressed_document"),
		MIMEType: ptypes.MIMEPDF,
		ToolID:   ptypes.ToolCompress,
		Note:     SizeReport(len(src.Data), out.Len()),
	}, nil
}

// SizeReport describes the size change of a compression run.
func SizeReport(before, after int) string {
	msg := fmt.Sprintf("PDF re-saved. Original size: %.2f KB, New size: %.2f KB.",
		float64(before)/1024, float64(after)/1024)
	if before == 0 {
		return msg + " No significant size change."
	}
	pct := float64(before-after) / float64(before) * 100
	switch {
	case after < before:
		msg += fmt.Sprintf(" Size reduced by %.2f%%.", pct)
	case after > before:
		msg += fmt.Sprintf(" Size increased by %.2f%% (this can happen if original was heavily optimized).", math.Abs(pct))
	default:
		msg += " No significant size change."
	}
	return msg
}

// Edit stamps req.Input onto the first page.
func (p *PDF) Edit(ctx context.Context, req Request) (ptypes.PendingArtifact, error) {
	if err := requireFiles(req, 1); err != nil {
		return ptypes.PendingArtifact{}, err
	}
	src := req.Files[0]
	if _, err := p.pages(src, "edit"); err != nil {
		return ptypes.PendingArtifact{}, err
	}
	if err := ctx.Err(); err != nil {
		return ptypes.PendingArtifact{}, err
	}

	wm, err := api.TextWatermark(req.Input, stampDescription, true, false, types.POINTS)
	if err != nil {
		return ptypes.PendingArtifact{}, fmt.Errorf("preparing text stamp: %w", err)
	}
	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(src.Data), &out, []string{"1"}, wm, conf()); err != nil {
		return ptypes.PendingArtifact{}, fmt.Errorf("stamping %s: %w", src.Name, err)
	}
	return ptypes.PendingArtifact{
		Payload:  out.Bytes(),
		FileName: p.stamped("edited_document"),
		MIMEType: ptypes.MIMEPDF,
		ToolID:   ptypes.ToolEdit,
	}, nil
}

// Protect encrypts the document with AES-256, using req.Input as both the
// user and the owner password.
func (p *PDF) Protect(ctx context.Context, req Request) (ptypes.PendingArtifact, error) {
	if err := requireFiles(req, 1); err != nil {
		return ptypes.PendingArtifact{}, err
	}
	if req.Input == "" {
		return ptypes.PendingArtifact{}, errinfo.Validation("Please enter a password to protect the PDF.")
	}
	src := req.Files[0]
	if err := ctx.Err(); err != nil {
		return ptypes.PendingArtifact{}, err
	}

	c := model.NewAESConfiguration(req.Input, req.Input, aesKeyLength)
	c.ValidationMode = model.ValidationRelaxed
	var out bytes.Buffer
	if err := api.Encrypt(bytes.NewReader(src.Data), &out, c); err != nil {
		return ptypes.PendingArtifact{}, fmt.Errorf("encrypting %s: %w", src.Name, err)
	}
	return ptypes.PendingArtifact{
		Payload:  out.Bytes(),
		FileName: p.stamped("protected_document"),
		MIMEType: ptypes.MIMEPDF,
		ToolID:   ptypes.ToolProtect,
	}, nil
}
