// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package intake

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfdesk/internal/errinfo"
	"github.com/pdiddy/pdfdesk/pkg/types"
)

// recordingNotifier captures the calls made by the controller.
type recordingNotifier struct {
	errors []string
	hides  int
}

func (r *recordingNotifier) ShowError(text string) { r.errors = append(r.errors, text) }
func (r *recordingNotifier) HideAll()              { r.hides++ }

func (r *recordingNotifier) lastError() string {
	if len(r.errors) == 0 {
		return ""
	}
	return r.errors[len(r.errors)-1]
}

func tool(t *testing.T, id types.ToolID) types.ToolConfiguration {
	t.Helper()
	cfg, ok := types.DefaultTools(true, "")[id]
	require.True(t, ok, "unknown tool %s", id)
	return cfg
}

func pdf(name string) types.SelectableFile {
	return types.SelectableFile{Name: name, MIMEType: types.MIMEPDF, Data: []byte("%PDF-1.4 " + name)}
}

func names(files []types.SelectableFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return out
}

func TestAddFileRejectsWrongType(t *testing.T) {
	n := &recordingNotifier{}
	c := New(tool(t, types.ToolSplit), n)

	err := c.AddFile(types.SelectableFile{Name: "notes.txt", MIMEType: "text/plain"})
	require.Error(t, err)
	assert.Equal(t, errinfo.KindValidation, errinfo.KindOf(err))
	assert.Equal(t, 0, c.Count())
	assert.Contains(t, n.lastError(), `"notes.txt"`)
	assert.Contains(t, n.lastError(), "pdf")
	assert.False(t, c.ProcessEnabled())
}

func TestAddFileRejectionKeepsSelection(t *testing.T) {
	n := &recordingNotifier{}
	c := New(tool(t, types.ToolCompress), n)

	require.NoError(t, c.AddFile(pdf("a.pdf")))
	require.Error(t, c.AddFile(types.SelectableFile{Name: "b.png", MIMEType: "image/png"}))

	assert.Equal(t, []string{"a.pdf"}, names(c.Files()))
	assert.True(t, c.ProcessEnabled())
}

func TestSingleFileToolReplacesSelection(t *testing.T) {
	n := &recordingNotifier{}
	c := New(tool(t, types.ToolEdit), n)

	require.NoError(t, c.AddFile(pdf("a.pdf")))
	require.NoError(t, c.AddFile(pdf("b.pdf")))
	assert.Equal(t, []string{"b.pdf"}, names(c.Files()))
	assert.Equal(t, 2, n.hides, "each accepted file clears messages")
}

func TestAddFilesSingleToolTakesFirst(t *testing.T) {
	c := New(tool(t, types.ToolProtect), &recordingNotifier{})
	added, err := c.AddFiles([]types.SelectableFile{pdf("first.pdf"), pdf("second.pdf")})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, []string{"first.pdf"}, names(c.Files()))
}

func TestAddFilesMergeReportsEachRejection(t *testing.T) {
	n := &recordingNotifier{}
	c := New(tool(t, types.ToolMerge), n)

	added, err := c.AddFiles([]types.SelectableFile{
		pdf("a.pdf"),
		{Name: "photo.jpg", MIMEType: "image/jpeg"},
		pdf("b.pdf"),
		{Name: "sheet.xlsx", MIMEType: "application/vnd.ms-excel"},
	})
	require.Error(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, names(c.Files()))
	assert.Contains(t, n.lastError(), "photo.jpg")
	assert.Contains(t, n.lastError(), "sheet.xlsx")
	assert.True(t, c.ProcessEnabled())
}

func TestRejectHook(t *testing.T) {
	var rejected []string
	c := New(tool(t, types.ToolMerge), &recordingNotifier{}, WithRejectHook(func(id types.ToolID, name string) {
		rejected = append(rejected, string(id)+":"+name)
	}))
	_, _ = c.AddFiles([]types.SelectableFile{{Name: "x.txt", MIMEType: "text/plain"}, pdf("ok.pdf")})
	assert.Equal(t, []string{"merge:x.txt"}, rejected)
}

func TestRemoveFile(t *testing.T) {
	n := &recordingNotifier{}
	c := New(tool(t, types.ToolMerge), n)
	_, err := c.AddFiles([]types.SelectableFile{pdf("a.pdf"), pdf("b.pdf"), pdf("c.pdf")})
	require.NoError(t, err)

	require.NoError(t, c.RemoveFile(1))
	assert.Equal(t, []string{"a.pdf", "c.pdf"}, names(c.Files()))

	err = c.RemoveFile(5)
	require.Error(t, err)
	assert.Equal(t, errinfo.KindValidation, errinfo.KindOf(err))
}

func TestRenderEmptyText(t *testing.T) {
	single := New(tool(t, types.ToolSplit), &recordingNotifier{}).Render()
	assert.Equal(t, "No file selected yet.", single.EmptyText)
	assert.Empty(t, single.Items)
	assert.False(t, single.ProcessEnabled)

	multi := New(tool(t, types.ToolMerge), &recordingNotifier{}).Render()
	assert.Equal(t, "No files selected yet.", multi.EmptyText)
}

func TestRenderItems(t *testing.T) {
	c := New(tool(t, types.ToolMerge), &recordingNotifier{})
	_, err := c.AddFiles([]types.SelectableFile{pdf("a.pdf"), pdf("b.pdf")})
	require.NoError(t, err)

	v := c.Render()
	require.Len(t, v.Items, 2)
	assert.Empty(t, v.EmptyText)
	assert.True(t, v.ProcessEnabled)
	for i, it := range v.Items {
		assert.Equal(t, i, it.Index)
		assert.Equal(t, i, it.OriginalIndex)
		assert.True(t, it.Removable)
		assert.True(t, it.Draggable)
		assert.Equal(t, types.IconPDF, it.Icon)
	}
}

func TestForceDisabledTool(t *testing.T) {
	cfg := types.DefaultTools(false, "no container runtime")[types.ToolWord]
	c := New(cfg, &recordingNotifier{})
	require.NoError(t, c.AddFile(types.SelectableFile{Name: "cv.docx", MIMEType: types.MIMEDocx}))
	assert.Equal(t, 1, c.Count())
	assert.False(t, c.ProcessEnabled())
	assert.Equal(t, types.IconWord, c.Render().Items[0].Icon)
}

// For any sequence of adds and removes, the process action is enabled iff
// the selection meets the tool minimum and the tool is not force-disabled.
func TestProcessEnabledInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, id := range []types.ToolID{types.ToolMerge, types.ToolSplit, types.ToolWord} {
		for _, forced := range []bool{false, true} {
			cfg := types.DefaultTools(true, "")[id]
			cfg.ForceDisabled = forced
			c := New(cfg, &recordingNotifier{})
			for step := 0; step < 200; step++ {
				switch rng.Intn(3) {
				case 0, 1:
					mime := cfg.AllowedMIMETypes[0]
					if rng.Intn(4) == 0 {
						mime = "text/plain"
					}
					_ = c.AddFile(types.SelectableFile{Name: fmt.Sprintf("f%d", step), MIMEType: mime})
				case 2:
					if n := c.Count(); n > 0 {
						require.NoError(t, c.RemoveFile(rng.Intn(n)))
					}
				}
				want := c.Count() >= cfg.MinSelection() && !forced
				require.Equal(t, want, c.Render().ProcessEnabled, "tool %s step %d", id, step)
			}
		}
	}
}

func TestDropTarget(t *testing.T) {
	c := New(tool(t, types.ToolMerge), &recordingNotifier{})

	for _, ev := range []DropTargetEvent{DragEnter, DragOverTarget, DragLeave, DropFiles} {
		res, err := c.HandleDropTarget(ev, nil)
		require.NoError(t, err)
		assert.True(t, res.PreventDefault, "%s must prevent default", ev)
		assert.True(t, res.StopPropagation, "%s must stop propagation", ev)
	}

	_, _ = c.HandleDropTarget(DragEnter, nil)
	assert.True(t, c.Render().DropHighlight)
	_, _ = c.HandleDropTarget(DragLeave, nil)
	assert.False(t, c.Render().DropHighlight)

	_, _ = c.HandleDropTarget(DragEnter, nil)
	_, err := c.HandleDropTarget(DropFiles, []types.SelectableFile{pdf("a.pdf"), pdf("b.pdf")})
	require.NoError(t, err)
	assert.False(t, c.Render().DropHighlight)
	assert.Equal(t, 2, c.Count())

	_, err = c.HandleDropTarget("wheel", nil)
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	c := New(tool(t, types.ToolMerge), &recordingNotifier{})
	_, _ = c.AddFiles([]types.SelectableFile{pdf("a.pdf"), pdf("b.pdf")})
	c.Reset()
	assert.Equal(t, 0, c.Count())
	assert.False(t, c.ProcessEnabled())
}

func TestConsumeKeepsLaterFiles(t *testing.T) {
	tests := []struct {
		name    string
		tool    types.ToolID
		initial []string
		later   []string
		want    []string
	}{
		{"merge keeps files added while processing", types.ToolMerge, []string{"a.pdf", "b.pdf"}, []string{"c.pdf"}, []string{"c.pdf"}},
		{"merge with nothing added empties", types.ToolMerge, []string{"a.pdf", "b.pdf"}, nil, []string{}},
		{"single tool keeps replacement", types.ToolSplit, []string{"a.pdf"}, []string{"b.pdf"}, []string{"b.pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tool(t, tt.tool), &recordingNotifier{})
			for _, n := range tt.initial {
				_, err := c.AddFiles([]types.SelectableFile{pdf(n)})
				require.NoError(t, err)
			}
			snapshot := c.Files()
			for _, n := range tt.later {
				_, err := c.AddFiles([]types.SelectableFile{pdf(n)})
				require.NoError(t, err)
			}

			c.Consume(snapshot)
			assert.Equal(t, tt.want, names(c.Files()))
		})
	}
}

func TestConsumeAfterReorderAndRemove(t *testing.T) {
	c := New(tool(t, types.ToolMerge), &recordingNotifier{})
	_, err := c.AddFiles([]types.SelectableFile{pdf("a.pdf"), pdf("b.pdf"), pdf("c.pdf")})
	require.NoError(t, err)
	snapshot := c.Files()[:2]

	_, err = c.AddFiles([]types.SelectableFile{pdf("d.pdf")})
	require.NoError(t, err)
	require.NoError(t, c.Reorder(3, 0))
	require.NoError(t, c.RemoveFile(1))

	assert.Equal(t, 1, c.Consume(snapshot), "a.pdf was already removed")
	assert.Equal(t, []string{"d.pdf", "c.pdf"}, names(c.Files()))
}
