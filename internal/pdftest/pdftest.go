// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftest builds small PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"math"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/pdfdesk/pkg/types"
)

// Page widths in points, rounded, of the sizes Sized accepts.
const (
	WidthA4     = 595
	WidthA5     = 421
	WidthLetter = 612
)

// Document returns an A4 PDF with the given number of pages. Each page
// carries its own number so pages can be told apart.
func Document(tb testing.TB, pages int) []byte {
	tb.Helper()
	return Sized(tb, "A4", pages)
}

// Sized returns a portrait PDF of the named gofpdf page size ("A4", "A5",
// "Letter"). Documents of different sizes can be told apart after a merge.
func Sized(tb testing.TB, size string, pages int) []byte {
	tb.Helper()
	pdf := gofpdf.New("P", "mm", size, "")
	pdf.SetFont("Helvetica", "", 14)
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.Cell(40, 10, fmt.Sprintf("page %d", i))
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		tb.Fatalf("building %d-page %s fixture: %v", pages, size, err)
	}
	return buf.Bytes()
}

// File wraps Document as a selectable PDF named name.
func File(tb testing.TB, name string, pages int) types.SelectableFile {
	tb.Helper()
	return types.SelectableFile{Name: name, MIMEType: types.MIMEPDF, Data: Document(tb, pages)}
}

// SizedFile wraps Sized as a selectable PDF named name.
func SizedFile(tb testing.TB, name, size string, pages int) types.SelectableFile {
	tb.Helper()
	return types.SelectableFile{Name: name, MIMEType: types.MIMEPDF, Data: Sized(tb, size, pages)}
}

// PageWidths returns the width in points of every page of data, in page
// order, rounded to whole points.
func PageWidths(tb testing.TB, data []byte) []int {
	tb.Helper()
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	dims, err := api.PageDims(bytes.NewReader(data), conf)
	if err != nil {
		tb.Fatalf("reading page sizes: %v", err)
	}
	out := make([]int, len(dims))
	for i, d := range dims {
		out[i] = int(math.Round(d.Width))
	}
	return out
}
