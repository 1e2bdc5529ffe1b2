// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package desk assembles the controllers one client works with: a message
// channel and a release modal shared by every tool, and a workspace (intake
// plus invoker) per tool. Commands from the CLI or the HTTP API are routed
// to the owning controller by Dispatch.
package desk

import (
	"context"
	"sync"
	"time"

	"github.com/pdiddy/pdfdesk/internal/gate"
	"github.com/pdiddy/pdfdesk/internal/intake"
	"github.com/pdiddy/pdfdesk/internal/invoke"
	"github.com/pdiddy/pdfdesk/internal/message"
	"github.com/pdiddy/pdfdesk/internal/metrics"
	"github.com/pdiddy/pdfdesk/internal/transform"
	"github.com/pdiddy/pdfdesk/pkg/types"
)

// Config holds what a desk is built from. Tools and Registry are shared
// between desks; everything else in a Desk is per client.
type Config struct {
	// Tools is the configuration of every tool, as returned by
	// types.DefaultTools.
	Tools map[types.ToolID]types.ToolConfiguration

	// Registry provides the adapter of each tool. A tool without an adapter
	// reports itself unavailable when processed.
	Registry transform.Registry

	// Releaser turns validated artifacts into download references.
	Releaser gate.Releaser

	// Policy replaces the default credential format checks when set.
	Policy gate.ReleasePolicy

	// Observers receive release modal transitions.
	Observers []gate.Observer

	// Context bounds transformations; cancelling it is for shutdown only.
	Context context.Context
}

// Workspace is the per-tool pair of intake controller and invoker.
type Workspace struct {
	Intake  *intake.Controller
	Invoker *invoke.Invoker
}

// Desk is one client's set of controllers. Safe for concurrent use.
type Desk struct {
	id      string
	channel *message.Channel
	modal   *gate.Modal
	tools   map[types.ToolID]*Workspace

	mu       sync.Mutex
	lastUsed time.Time
	now      func() time.Time
}

// New builds a desk from cfg. id identifies it to the Manager and in logs.
func New(id string, cfg Config) *Desk {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}

	ch := message.NewChannel()
	opts := []gate.Option{gate.WithObserver(fanOut(cfg.Observers))}
	if cfg.Policy != nil {
		opts = append(opts, gate.WithPolicy(cfg.Policy))
	}
	modal := gate.NewModal(ch, cfg.Releaser, opts...)

	d := &Desk{
		id:      id,
		channel: ch,
		modal:   modal,
		tools:   make(map[types.ToolID]*Workspace, len(cfg.Tools)),
		now:     time.Now,
	}
	for toolID, tc := range cfg.Tools {
		in := intake.New(tc, ch, intake.WithRejectHook(func(tool types.ToolID, _ string) {
			metrics.RecordIntakeRejection(string(tool))
		}))
		var adapter transform.Adapter
		if a, err := cfg.Registry.Lookup(toolID); err == nil {
			adapter = a
		}
		d.tools[toolID] = &Workspace{
			Intake:  in,
			Invoker: invoke.New(in, adapter, ch, modal, invoke.WithContext(ctx)),
		}
	}
	d.lastUsed = d.now()
	return d
}

// ID returns the desk identifier.
func (d *Desk) ID() string { return d.id }

// Channel returns the desk's message channel.
func (d *Desk) Channel() *message.Channel { return d.channel }

// Modal returns the desk's release modal.
func (d *Desk) Modal() *gate.Modal { return d.modal }

// Workspace returns the workspace of tool id.
func (d *Desk) Workspace(id types.ToolID) (*Workspace, error) {
	ws, ok := d.tools[id]
	if !ok {
		return nil, unknownTool(id)
	}
	return ws, nil
}

// Wait blocks until no transformation is in flight on any tool.
func (d *Desk) Wait() {
	for _, ws := range d.tools {
		ws.Invoker.Wait()
	}
}

// LastUsed returns the time of the most recent dispatch.
func (d *Desk) LastUsed() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastUsed
}

// Busy reports whether any tool has a transformation in flight.
func (d *Desk) Busy() bool {
	for _, ws := range d.tools {
		if ws.Invoker.Busy() {
			return true
		}
	}
	return false
}

func (d *Desk) touch() {
	d.mu.Lock()
	d.lastUsed = d.now()
	d.mu.Unlock()
}

// ToolView is the rendered state of one tool.
type ToolView struct {
	intake.View
	Busy                bool   `json:"busy"`
	Multi               bool   `json:"multi"`
	SecondaryInputLabel string `json:"secondary_input_label,omitempty"`
	DisabledReason      string `json:"disabled_reason,omitempty"`
}

// View is a snapshot of everything a client renders.
type View struct {
	ID      string        `json:"id"`
	Surface message.State `json:"surface"`
	Tools   []ToolView    `json:"tools"`
	Modal   gate.View     `json:"modal"`
}

// View returns a snapshot of the desk, tools in display order.
func (d *Desk) View() View {
	v := View{
		ID:      d.id,
		Surface: d.channel.State(),
		Modal:   d.modal.View(),
	}
	for _, id := range types.AllTools {
		ws, ok := d.tools[id]
		if !ok {
			continue
		}
		cfg := ws.Intake.Config()
		v.Tools = append(v.Tools, ToolView{
			View:                ws.Intake.Render(),
			Busy:                ws.Invoker.Busy(),
			Multi:               cfg.Multi,
			SecondaryInputLabel: cfg.SecondaryInputLabel,
			DisabledReason:      cfg.DisabledReason,
		})
	}
	return v
}
