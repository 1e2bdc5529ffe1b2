// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package intake

import (
	"github.com/pdiddy/pdfdesk/internal/errinfo"
)

// Marker is the visual insertion hint shown on the hovered preview item.
type Marker string

const (
	MarkerNone   Marker = ""
	MarkerBefore Marker = "before"
	MarkerAfter  Marker = "after"
)

// dragState is the transient state of a reorder drag. It never mutates the
// selection; only Drop does.
type dragState struct {
	active bool
	source int
	target int
	side   Marker
}

// DragStart begins dragging the preview item at the rendered index.
func (c *Controller) DragStart(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkReorderLocked(index); err != nil {
		return err
	}
	c.drag = dragState{active: true, source: index, target: -1}
	return nil
}

// DragOver records the insertion hint for the hovered item. The pointer is
// compared with the horizontal midpoint of the hovered item: past it means
// insert after, otherwise insert before. Hovering the dragged item itself
// shows no hint.
func (c *Controller) DragOver(target int, pointerX, itemLeft, itemWidth float64) (Marker, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkReorderLocked(target); err != nil {
		return MarkerNone, err
	}
	if !c.drag.active || target == c.drag.source {
		c.drag.target = -1
		c.drag.side = MarkerNone
		return MarkerNone, nil
	}

	side := MarkerBefore
	if pointerX > itemLeft+itemWidth/2 {
		side = MarkerAfter
	}
	c.drag.target = target
	c.drag.side = side
	return side, nil
}

// Drop moves the dragged item to the current rendered position of target.
// Dropping an item on itself changes nothing. All drag markers are cleared.
func (c *Controller) Drop(target int) error {
	c.mu.Lock()
	if err := c.checkReorderLocked(target); err != nil {
		c.mu.Unlock()
		return err
	}
	if !c.drag.active {
		c.mu.Unlock()
		return errinfo.Validation("No drag in progress.")
	}
	source := c.drag.source
	c.drag = dragState{}
	if source != target {
		c.files = Move(c.files, source, target)
	}
	c.mu.Unlock()

	c.notify.HideAll()
	return nil
}

// DragEnd clears every transient drag marker, whether or not a drop happened.
func (c *Controller) DragEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drag = dragState{}
}

// Reorder moves the item at from to position to in one step, as a drag
// started on from and dropped on to.
func (c *Controller) Reorder(from, to int) error {
	if err := c.DragStart(from); err != nil {
		return err
	}
	err := c.Drop(to)
	c.DragEnd()
	return err
}

func (c *Controller) checkReorderLocked(index int) error {
	if !c.cfg.Multi {
		return errinfo.Validation("Reordering is only available when merging.")
	}
	if index < 0 || index >= len(c.files) {
		return errinfo.Validation("No file at position %d (%d selected).", index, len(c.files))
	}
	return nil
}

// Move returns s with the element at from removed and reinserted at to. All
// other elements keep their relative order. s is modified in place.
func Move[T any](s []T, from, to int) []T {
	if from == to {
		return s
	}
	moved := s[from]
	if from < to {
		copy(s[from:to], s[from+1:to+1])
	} else {
		copy(s[to+1:from+1], s[to:from])
	}
	s[to] = moved
	return s
}
