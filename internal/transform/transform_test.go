// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfdesk/internal/errinfo"
	"github.com/pdiddy/pdfdesk/internal/pdftest"
	"github.com/pdiddy/pdfdesk/pkg/types"
)

var fixedNow = time.UnixMilli(1700000000123)

func newTestPDF() *PDF {
	return NewPDF(WithClock(func() time.Time { return fixedNow }))
}

func pageCount(t *testing.T, data []byte) int {
	t.Helper()
	n, err := api.PageCount(bytes.NewReader(data), conf())
	require.NoError(t, err)
	return n
}

func TestMerge(t *testing.T) {
	p := newTestPDF()
	a, err := p.Merge(context.Background(), Request{Files: []types.SelectableFile{
		pdftest.File(t, "one.pdf", 1),
		pdftest.File(t, "two.pdf", 2),
	}})
	require.NoError(t, err)

	assert.Equal(t, "merged_document_1700000000123.pdf", a.FileName)
	assert.Equal(t, types.MIMEPDF, a.MIMEType)
	assert.Equal(t, types.ToolMerge, a.ToolID)
	assert.Equal(t, 3, pageCount(t, a.Payload))
}

func TestMergeFollowsSelectionOrder(t *testing.T) {
	a4 := pdftest.SizedFile(t, "a4.pdf", "A4", 1)
	a5 := pdftest.SizedFile(t, "a5.pdf", "A5", 2)
	letter := pdftest.SizedFile(t, "letter.pdf", "Letter", 1)

	tests := []struct {
		name  string
		files []types.SelectableFile
		want  []int
	}{
		{"as given", []types.SelectableFile{a4, a5, letter}, []int{pdftest.WidthA4, pdftest.WidthA5, pdftest.WidthA5, pdftest.WidthLetter}},
		{"reversed", []types.SelectableFile{letter, a5, a4}, []int{pdftest.WidthLetter, pdftest.WidthA5, pdftest.WidthA5, pdftest.WidthA4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := newTestPDF().Merge(context.Background(), Request{Files: tt.files})
			require.NoError(t, err)
			assert.Equal(t, tt.want, pdftest.PageWidths(t, a.Payload))
		})
	}
}

func TestMergeNeedsTwoFiles(t *testing.T) {
	_, err := newTestPDF().Merge(context.Background(), Request{Files: []types.SelectableFile{
		pdftest.File(t, "one.pdf", 1),
	}})
	assert.Error(t, err)
}

func TestMergeUnreadableInput(t *testing.T) {
	_, err := newTestPDF().Merge(context.Background(), Request{Files: []types.SelectableFile{
		pdftest.File(t, "one.pdf", 1),
		{Name: "broken.pdf", MIMEType: types.MIMEPDF, Data: []byte("not a pdf")},
	}})
	require.Error(t, err)
	assert.Equal(t, errinfo.KindTransformation, errinfo.KindOf(err))
}

func TestSplit(t *testing.T) {
	a, err := newTestPDF().Split(context.Background(), Request{Files: []types.SelectableFile{
		pdftest.File(t, "Report.PDF", 3),
	}})
	require.NoError(t, err)
	assert.Equal(t, "Report_split_pages.zip", a.FileName)
	assert.Equal(t, types.MIMEZip, a.MIMEType)

	zr, err := zip.NewReader(bytes.NewReader(a.Payload), int64(len(a.Payload)))
	require.NoError(t, err)
	require.Len(t, zr.File, 3)
	for i, f := range zr.File {
		assert.Equal(t, fmt.Sprintf("Report_page_%d.pdf", i+1), f.Name)
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, 1, pageCount(t, data))
	}
}

func TestZeroPageDocuments(t *testing.T) {
	p := newTestPDF()
	p.countPages = func(io.ReadSeeker, *model.Configuration) (int, error) { return 0, nil }
	req := Request{Files: []types.SelectableFile{pdftest.File(t, "empty.pdf", 1)}, Input: "hello"}

	tests := []struct {
		name string
		run  func(context.Context, Request) (types.PendingArtifact, error)
		want string
	}{
		{"split", p.Split, "The selected PDF has no pages to split."},
		{"edit", p.Edit, "The selected PDF has no pages to edit."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.run(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.Equal(t, errinfo.KindTransformation, errinfo.KindOf(err))
		})
	}
}

func TestSplitHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestPDF().Split(ctx, Request{Files: []types.SelectableFile{pdftest.File(t, "a.pdf", 2)}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompress(t *testing.T) {
	src := pdftest.File(t, "big.pdf", 4)
	a, err := newTestPDF().Compress(context.Background(), Request{Files: []types.SelectableFile{src}})
	require.NoError(t, err)
	assert.Equal(t, "compressed_document_1700000000123.pdf", a.FileName)
	assert.Equal(t, 4, pageCount(t, a.Payload))
	assert.Contains(t, a.Note, "PDF re-saved. Original size:")
}

func TestSizeReport(t *testing.T) {
	tests := []struct {
		name          string
		before, after int
		want          string
	}{
		{"reduced", 2048, 1024, "PDF re-saved. Original size: 2.00 KB, New size: 1.00 KB. Size reduced by 50.00%."},
		{"increased", 1024, 1536, "PDF re-saved. Original size: 1.00 KB, New size: 1.50 KB. Size increased by 50.00% (this can happen if original was heavily optimized)."},
		{"unchanged", 1024, 1024, "PDF re-saved. Original size: 1.00 KB, New size: 1.00 KB. No significant size change."},
		{"empty input", 0, 10, "PDF re-saved. Original size: 0.00 KB, New size: 0.01 KB. No significant size change."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SizeReport(tt.before, tt.after))
		})
	}
}

func TestEdit(t *testing.T) {
	src := pdftest.File(t, "letter.pdf", 2)
	a, err := newTestPDF().Edit(context.Background(), Request{Files: []types.SelectableFile{src}, Input: "APPROVED"})
	require.NoError(t, err)
	assert.Equal(t, "edited_document_1700000000123.pdf", a.FileName)
	assert.Equal(t, types.ToolEdit, a.ToolID)
	assert.Equal(t, 2, pageCount(t, a.Payload))
	assert.NotEqual(t, src.Data, a.Payload)
}

func TestProtect(t *testing.T) {
	src := pdftest.File(t, "secret.pdf", 1)
	a, err := newTestPDF().Protect(context.Background(), Request{Files: []types.SelectableFile{src}, Input: "Secret1!"})
	require.NoError(t, err)
	assert.Equal(t, "protected_document_1700000000123.pdf", a.FileName)

	_, err = api.PageCount(bytes.NewReader(a.Payload), conf())
	assert.Error(t, err, "opening without the password fails")

	withPW := model.NewAESConfiguration("Secret1!", "Secret1!", aesKeyLength)
	n, err := api.PageCount(bytes.NewReader(a.Payload), withPW)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestProtectNeedsPassword(t *testing.T) {
	_, err := newTestPDF().Protect(context.Background(), Request{Files: []types.SelectableFile{pdftest.File(t, "a.pdf", 1)}})
	require.Error(t, err)
	assert.Equal(t, errinfo.KindValidation, errinfo.KindOf(err))
}

// fakeRuntime stands in for docker/podman.
type fakeRuntime struct {
	imageErr error
	run      func(stdin io.Reader, stdout io.Writer) error
}

func (f *fakeRuntime) Name() string             { return "fake" }
func (f *fakeRuntime) Available() bool          { return true }
func (f *fakeRuntime) ImageExists(string) error { return f.imageErr }
func (f *fakeRuntime) Run(_ context.Context, _ string, stdin io.Reader, stdout io.Writer) error {
	return f.run(stdin, stdout)
}

func TestWord(t *testing.T) {
	rt := &fakeRuntime{run: func(stdin io.Reader, stdout io.Writer) error {
		_, _ = io.Copy(io.Discard, stdin)
		_, err := stdout.Write([]byte("%PDF-1.7\n..."))
		return err
	}}
	w, err := NewWord(rt, "")
	require.NoError(t, err)

	a, err := w.Transform(context.Background(), Request{Files: []types.SelectableFile{
		{Name: "Minutes.final.docx", MIMEType: types.MIMEDocx, Data: []byte("PK")},
	}})
	require.NoError(t, err)
	assert.Equal(t, "Minutes.final.pdf", a.FileName)
	assert.Equal(t, types.ToolWord, a.ToolID)
}

func TestWordRejectsNonPDFOutput(t *testing.T) {
	rt := &fakeRuntime{run: func(_ io.Reader, stdout io.Writer) error {
		_, err := stdout.Write([]byte("Error: source file could not be loaded"))
		return err
	}}
	w, err := NewWord(rt, "")
	require.NoError(t, err)
	_, err = w.Transform(context.Background(), Request{Files: []types.SelectableFile{
		{Name: "a.doc", MIMEType: types.MIMEDoc, Data: []byte("x")},
	}})
	assert.Error(t, err)
}

func TestNewWordMissingImage(t *testing.T) {
	_, err := NewWord(&fakeRuntime{imageErr: errors.New("no such image")}, "custom:1")
	require.Error(t, err)
	assert.Equal(t, errinfo.KindEnvironment, errinfo.KindOf(err))
	assert.Contains(t, err.Error(), "custom:1")
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(newTestPDF(), nil)
	for _, id := range []types.ToolID{types.ToolMerge, types.ToolSplit, types.ToolCompress, types.ToolEdit, types.ToolProtect} {
		_, err := r.Lookup(id)
		assert.NoError(t, err, id)
	}
	_, err := r.Lookup(types.ToolWord)
	assert.Error(t, err, "word is absent without a converter")
}

func TestBaseName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"report.pdf", "report"},
		{"REPORT.PDF", "REPORT"},
		{"dir/scan.Pdf", "scan"},
		{"notes.txt", "notes.txt"},
		{"a.pdf.pdf", "a.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, baseName(tt.in, ".pdf"), tt.in)
	}
}
