// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package intake manages the files selected for one tool: type validation,
// ingestion from the file picker or the drop target, the preview list, and
// the enabled state of the process action. Multi-file tools (merge) also
// support drag reordering of the preview list; see reorder.go.
package intake

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pdiddy/pdfdesk/internal/errinfo"
	"github.com/pdiddy/pdfdesk/pkg/types"
)

// Notifier is the part of the message channel the controller needs.
type Notifier interface {
	ShowError(text string)
	HideAll()
}

// Item is one entry of the rendered preview list.
type Item struct {
	Index         int    `json:"index"`
	Name          string `json:"name"`
	MIMEType      string `json:"mime_type"`
	Size          int    `json:"size"`
	Icon          string `json:"icon"`
	OriginalIndex int    `json:"original_index"`
	Removable     bool   `json:"removable"`
	Draggable     bool   `json:"draggable"`
	Dragging      bool   `json:"dragging,omitempty"`
	Marker        Marker `json:"marker,omitempty"`
}

// View is the rendered state of a controller.
type View struct {
	Tool           types.ToolID `json:"tool"`
	Items          []Item       `json:"items"`
	EmptyText      string       `json:"empty_text,omitempty"`
	ProcessEnabled bool         `json:"process_enabled"`
	DropHighlight  bool         `json:"drop_highlight"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithRejectHook registers fn to run for every rejected file.
func WithRejectHook(fn func(tool types.ToolID, name string)) Option {
	return func(c *Controller) {
		c.onReject = fn
	}
}

// Controller owns the selection of one tool. It is safe for concurrent use.
type Controller struct {
	mu        sync.Mutex
	cfg       types.ToolConfiguration
	notify    Notifier
	files     []types.SelectableFile
	seq       int
	highlight bool
	drag      dragState
	onReject  func(tool types.ToolID, name string)
}

// New creates a controller for the tool described by cfg.
func New(cfg types.ToolConfiguration, notify Notifier, opts ...Option) *Controller {
	c := &Controller{cfg: cfg, notify: notify}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the tool configuration.
func (c *Controller) Config() types.ToolConfiguration {
	return c.cfg
}

// AddFile validates f and adds it to the selection: it becomes the sole
// selection of a single-file tool or is appended for a multi-file tool.
// A rejected file leaves the selection unchanged and shows an error.
func (c *Controller) AddFile(f types.SelectableFile) error {
	c.mu.Lock()
	err := c.addLocked(f)
	c.mu.Unlock()

	if err != nil {
		c.reject(f.Name)
		c.notify.ShowError(err.Error())
		return err
	}
	c.notify.HideAll()
	return nil
}

// AddFiles ingests a batch from the file picker or a drop. Single-file tools
// take only the first file. Multi-file tools add every acceptable file and
// report all rejected ones in one error banner. The number of files added is
// returned along with the rejection error, if any.
func (c *Controller) AddFiles(files []types.SelectableFile) (int, error) {
	if len(files) == 0 {
		return 0, nil
	}
	if !c.cfg.Multi {
		if err := c.AddFile(files[0]); err != nil {
			return 0, err
		}
		return 1, nil
	}

	var (
		added    int
		rejected []string
		names    []string
	)
	c.mu.Lock()
	for _, f := range files {
		if err := c.addLocked(f); err != nil {
			rejected = append(rejected, err.Error())
			names = append(names, f.Name)
			continue
		}
		added++
	}
	c.mu.Unlock()

	for _, n := range names {
		c.reject(n)
	}
	if len(rejected) > 0 {
		msg := strings.Join(rejected, " ")
		c.notify.ShowError(msg)
		return added, errinfo.Validation("%s", msg)
	}
	c.notify.HideAll()
	return added, nil
}

func (c *Controller) addLocked(f types.SelectableFile) error {
	if !c.cfg.Allows(f.MIMEType) {
		if c.cfg.Multi {
			return errinfo.Validation("File %q is not a %s file and was skipped.", f.Name, c.cfg.ExpectedTypes())
		}
		return errinfo.Validation("File %q is not a supported type for this tool. Please select a %s file.", f.Name, c.cfg.ExpectedTypes())
	}

	f.OriginalIndex = c.seq
	c.seq++
	if c.cfg.Multi {
		c.files = append(c.files, f)
	} else {
		c.files = []types.SelectableFile{f}
	}
	c.drag = dragState{}
	return nil
}

func (c *Controller) reject(name string) {
	if c.onReject != nil {
		c.onReject(c.cfg.ID, name)
	}
}

// RemoveFile removes the file at the rendered index.
func (c *Controller) RemoveFile(index int) error {
	c.mu.Lock()
	if index < 0 || index >= len(c.files) {
		n := len(c.files)
		c.mu.Unlock()
		return errinfo.Validation("No file at position %d (%d selected).", index, n)
	}
	c.files = append(c.files[:index:index], c.files[index+1:]...)
	c.drag = dragState{}
	c.mu.Unlock()

	c.notify.HideAll()
	return nil
}

// Reset discards the whole selection.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = nil
	c.drag = dragState{}
}

// Consume removes the files of a processed snapshot from the selection,
// matched by OriginalIndex. Files added after the snapshot was taken stay
// selected in their current order. It returns the number removed.
func (c *Controller) Consume(snapshot []types.SelectableFile) int {
	done := make(map[int]bool, len(snapshot))
	for _, f := range snapshot {
		done[f.OriginalIndex] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.files[:0:0]
	for _, f := range c.files {
		if !done[f.OriginalIndex] {
			kept = append(kept, f)
		}
	}
	removed := len(c.files) - len(kept)
	if removed > 0 {
		c.files = kept
		c.drag = dragState{}
	}
	return removed
}

// Files returns a copy of the current selection in order.
func (c *Controller) Files() []types.SelectableFile {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.SelectableFile, len(c.files))
	copy(out, c.files)
	return out
}

// Count returns the number of selected files.
func (c *Controller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.files)
}

// ProcessEnabled reports whether the process action is available.
func (c *Controller) ProcessEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processEnabledLocked()
}

func (c *Controller) processEnabledLocked() bool {
	return len(c.files) >= c.cfg.MinSelection() && !c.cfg.ForceDisabled
}

// Render produces the preview list and the process action state.
func (c *Controller) Render() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Tool:           c.cfg.ID,
		Items:          make([]Item, 0, len(c.files)),
		ProcessEnabled: c.processEnabledLocked(),
		DropHighlight:  c.highlight,
	}
	if len(c.files) == 0 {
		if c.cfg.Multi {
			v.EmptyText = "No files selected yet."
		} else {
			v.EmptyText = "No file selected yet."
		}
		return v
	}

	for i, f := range c.files {
		item := Item{
			Index:         i,
			Name:          f.Name,
			MIMEType:      f.MIMEType,
			Size:          f.Size(),
			Icon:          c.cfg.Icon,
			OriginalIndex: f.OriginalIndex,
			Removable:     true,
			Draggable:     c.cfg.Multi,
		}
		if c.drag.active {
			item.Dragging = i == c.drag.source
			if i == c.drag.target {
				item.Marker = c.drag.side
			}
		}
		v.Items = append(v.Items, item)
	}
	return v
}

// DropTargetEvent is a drag event on the tool's drop target.
type DropTargetEvent string

const (
	DragEnter      DropTargetEvent = "dragenter"
	DragOverTarget DropTargetEvent = "dragover"
	DragLeave      DropTargetEvent = "dragleave"
	DropFiles      DropTargetEvent = "drop"
)

// EventResult tells the surface how to treat the original event. Drop target
// events never fall through to the surface's default navigation.
type EventResult struct {
	PreventDefault  bool `json:"prevent_default"`
	StopPropagation bool `json:"stop_propagation"`
}

// HandleDropTarget processes a drag event on the drop target. The highlight
// is on while a drag is over the target. A drop ingests files through
// AddFiles.
func (c *Controller) HandleDropTarget(ev DropTargetEvent, files []types.SelectableFile) (EventResult, error) {
	res := EventResult{PreventDefault: true, StopPropagation: true}

	c.mu.Lock()
	switch ev {
	case DragEnter, DragOverTarget:
		c.highlight = true
	case DragLeave, DropFiles:
		c.highlight = false
	default:
		c.mu.Unlock()
		return res, fmt.Errorf("unknown drop target event %q", ev)
	}
	c.mu.Unlock()

	if ev == DropFiles {
		_, err := c.AddFiles(files)
		return res, err
	}
	return res, nil
}
