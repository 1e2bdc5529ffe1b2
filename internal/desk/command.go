// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package desk

import (
	"context"

	"github.com/pdiddy/pdfdesk/internal/errinfo"
	"github.com/pdiddy/pdfdesk/internal/intake"
	"github.com/pdiddy/pdfdesk/pkg/types"
)

// Command is one user action addressed to a desk.
type Command interface {
	apply(ctx context.Context, d *Desk) (Result, error)
}

// Result carries what a command produced beyond the state change visible in
// View. Only the fields relevant to the command are set.
type Result struct {
	// Added is the number of files accepted by AddFiles or a drop.
	Added int `json:"added,omitempty"`

	// Marker is the insertion hint computed by DragOver.
	Marker intake.Marker `json:"marker,omitempty"`

	// Event tells the surface how to treat a drop target event.
	Event *intake.EventResult `json:"event,omitempty"`

	// Done yields the settled outcome of Process. Nil for other commands.
	Done <-chan error `json:"-"`

	// Ref is the download reference returned by ConfirmDownload.
	Ref string `json:"ref,omitempty"`
}

// Dispatch routes cmd to the controller that owns it.
func (d *Desk) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	if cmd == nil {
		return Result{}, errinfo.Validation("no command given")
	}
	d.touch()
	return cmd.apply(ctx, d)
}

func unknownTool(id types.ToolID) error {
	return errinfo.Validation("Unknown tool %q.", string(id))
}

func (d *Desk) selection(id types.ToolID) (*intake.Controller, error) {
	ws, err := d.Workspace(id)
	if err != nil {
		return nil, err
	}
	return ws.Intake, nil
}

// AddFiles offers files to a tool's selection, as from the file picker.
type AddFiles struct {
	Tool  types.ToolID
	Files []types.SelectableFile
}

func (c AddFiles) apply(_ context.Context, d *Desk) (Result, error) {
	in, err := d.selection(c.Tool)
	if err != nil {
		return Result{}, err
	}
	n, err := in.AddFiles(c.Files)
	return Result{Added: n}, err
}

// RemoveFile drops the file at Index from a tool's selection.
type RemoveFile struct {
	Tool  types.ToolID
	Index int
}

func (c RemoveFile) apply(_ context.Context, d *Desk) (Result, error) {
	in, err := d.selection(c.Tool)
	if err != nil {
		return Result{}, err
	}
	return Result{}, in.RemoveFile(c.Index)
}

// DropTarget is a drag event on a tool's drop target. Files is only read
// for intake.DropFiles.
type DropTarget struct {
	Tool  types.ToolID
	Event intake.DropTargetEvent
	Files []types.SelectableFile
}

func (c DropTarget) apply(_ context.Context, d *Desk) (Result, error) {
	in, err := d.selection(c.Tool)
	if err != nil {
		return Result{}, err
	}
	before := in.Count()
	ev, err := in.HandleDropTarget(c.Event, c.Files)
	res := Result{Event: &ev}
	if c.Event == intake.DropFiles {
		res.Added = in.Count() - before
	}
	return res, err
}

// DragStart begins a reorder drag on the preview item at Index.
type DragStart struct {
	Tool  types.ToolID
	Index int
}

func (c DragStart) apply(_ context.Context, d *Desk) (Result, error) {
	in, err := d.selection(c.Tool)
	if err != nil {
		return Result{}, err
	}
	return Result{}, in.DragStart(c.Index)
}

// DragOver reports the pointer over the preview item at Target. ItemLeft
// and ItemWidth are the item's horizontal bounds.
type DragOver struct {
	Tool      types.ToolID
	Target    int
	PointerX  float64
	ItemLeft  float64
	ItemWidth float64
}

func (c DragOver) apply(_ context.Context, d *Desk) (Result, error) {
	in, err := d.selection(c.Tool)
	if err != nil {
		return Result{}, err
	}
	m, err := in.DragOver(c.Target, c.PointerX, c.ItemLeft, c.ItemWidth)
	return Result{Marker: m}, err
}

// Drop completes a reorder drag on the preview item at Target.
type Drop struct {
	Tool   types.ToolID
	Target int
}

func (c Drop) apply(_ context.Context, d *Desk) (Result, error) {
	in, err := d.selection(c.Tool)
	if err != nil {
		return Result{}, err
	}
	return Result{}, in.Drop(c.Target)
}

// DragEnd abandons any reorder drag in progress.
type DragEnd struct {
	Tool types.ToolID
}

func (c DragEnd) apply(_ context.Context, d *Desk) (Result, error) {
	in, err := d.selection(c.Tool)
	if err != nil {
		return Result{}, err
	}
	in.DragEnd()
	return Result{}, nil
}

// Reorder moves the file at From so that it lands at To, as a complete
// drag from one item to another.
type Reorder struct {
	Tool     types.ToolID
	From, To int
}

func (c Reorder) apply(_ context.Context, d *Desk) (Result, error) {
	in, err := d.selection(c.Tool)
	if err != nil {
		return Result{}, err
	}
	return Result{}, in.Reorder(c.From, c.To)
}

// Process runs a tool on its current selection. Input is the secondary
// input (text to add, password to apply).
type Process struct {
	Tool  types.ToolID
	Input string
}

func (c Process) apply(_ context.Context, d *Desk) (Result, error) {
	ws, err := d.Workspace(c.Tool)
	if err != nil {
		return Result{}, err
	}
	done, err := ws.Invoker.Process(c.Input)
	return Result{Done: done}, err
}

// SetEmail updates the email field of the release modal.
type SetEmail struct{ Value string }

func (c SetEmail) apply(_ context.Context, d *Desk) (Result, error) {
	return Result{}, d.modal.SetEmail(c.Value)
}

// SetPassword updates the password field of the release modal.
type SetPassword struct{ Value string }

func (c SetPassword) apply(_ context.Context, d *Desk) (Result, error) {
	return Result{}, d.modal.SetPassword(c.Value)
}

// Submit validates the release modal's credentials.
type Submit struct{}

func (Submit) apply(_ context.Context, d *Desk) (Result, error) {
	return Result{}, d.modal.Submit()
}

// ConfirmDownload releases the validated artifact.
type ConfirmDownload struct{}

func (ConfirmDownload) apply(ctx context.Context, d *Desk) (Result, error) {
	ref, err := d.modal.ConfirmDownload(ctx)
	return Result{Ref: ref}, err
}

// Dismiss closes the release modal and discards the artifact.
type Dismiss struct{}

func (Dismiss) apply(_ context.Context, d *Desk) (Result, error) {
	d.modal.Dismiss()
	return Result{}, nil
}

// GateAction parses the name of a release modal action without a payload.
func GateAction(name string) (Command, error) {
	switch name {
	case "submit":
		return Submit{}, nil
	case "confirm":
		return ConfirmDownload{}, nil
	case "dismiss":
		return Dismiss{}, nil
	default:
		return nil, errinfo.Validation("Unknown gate action %q.", name)
	}
}
