// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package invoke binds a tool's process action to its transformation
// adapter. An Invoker checks the selection, shows the tool's busy message,
// runs the adapter on its own goroutine and settles the result: failures go
// to the message surface, artifacts go to the release gate.
package invoke

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/pdfdesk/internal/errinfo"
	"github.com/pdiddy/pdfdesk/internal/logging"
	"github.com/pdiddy/pdfdesk/internal/metrics"
	"github.com/pdiddy/pdfdesk/internal/transform"
	"github.com/pdiddy/pdfdesk/pkg/types"
)

// ErrBusy is returned when the tool already has a transformation in flight.
var ErrBusy = errors.New("a transformation is already running for this tool")

// MsgUnknownError replaces an empty failure message.
const MsgUnknownError = "An unknown error occurred."

// Surface is the part of the message channel the invoker writes to.
type Surface interface {
	ShowInfo(text string)
	ShowError(text string)
}

// Selection is the intake state the invoker reads and consumes.
type Selection interface {
	Config() types.ToolConfiguration
	Files() []types.SelectableFile
	Consume(snapshot []types.SelectableFile) int
}

// Gate receives successful artifacts.
type Gate interface {
	Open(a types.PendingArtifact)
}

// phrases holds the user-facing text of one tool.
type phrases struct {
	busy    string
	failing string
	missing string
}

var toolPhrases = map[types.ToolID]phrases{
	types.ToolMerge: {
		busy:    "Merging PDFs... This might take a moment, please do not close the tab.",
		failing: "Error merging PDFs",
	},
	types.ToolSplit: {
		busy:    "Splitting PDF into individual pages and zipping... This might take a moment.",
		failing: "Error splitting PDF",
	},
	types.ToolCompress: {
		busy:    "Attempting to compress PDF... This may take a moment. Significant size reduction is not guaranteed.",
		failing: "Error compressing PDF",
	},
	types.ToolEdit: {
		busy:    "Adding text to PDF... This might take a moment.",
		failing: "Error adding text to PDF",
		missing: "Please enter the text to add to the PDF.",
	},
	types.ToolProtect: {
		busy:    "Protecting PDF with password... This might take a moment.",
		failing: "Error protecting PDF",
		missing: "Please enter a password to protect the PDF.",
	},
	types.ToolWord: {
		busy:    "Converting Word document to PDF... This might take a moment.",
		failing: "Error converting Word document",
	},
}

// Invoker runs one tool's transformations. At most one runs at a time.
type Invoker struct {
	sel     Selection
	adapter transform.Adapter
	surface Surface
	gate    Gate
	base    context.Context
	now     func() time.Time

	mu   sync.Mutex
	busy bool
	wg   sync.WaitGroup
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithContext sets the context transformations run under. Transformations
// are not cancelled from the UI; cancelling ctx is for process shutdown.
func WithContext(ctx context.Context) Option {
	return func(v *Invoker) { v.base = ctx }
}

// New creates an invoker for the tool configured on sel.
func New(sel Selection, a transform.Adapter, s Surface, g Gate, opts ...Option) *Invoker {
	v := &Invoker{
		sel:     sel,
		adapter: a,
		surface: s,
		gate:    g,
		base:    context.Background(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Busy reports whether a transformation is in flight.
func (v *Invoker) Busy() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.busy
}

// Wait blocks until no transformation is in flight.
func (v *Invoker) Wait() {
	v.wg.Wait()
}

// Process starts a transformation of the current selection with the given
// secondary input. Checks that fail before the adapter runs are shown on the
// surface and returned directly. Otherwise the busy message is shown before
// Process returns, and the returned channel yields the settled error (nil on
// success) once the result has been routed to the surface or the gate.
func (v *Invoker) Process(input string) (<-chan error, error) {
	cfg := v.sel.Config()
	ph := toolPhrases[cfg.ID]
	log := logging.L().With(zap.String("tool", string(cfg.ID)))

	files := v.sel.Files()
	if err := v.check(cfg, ph, len(files), input); err != nil {
		v.surface.ShowError(errinfo.Message(err, MsgUnknownError))
		log.Info("process rejected", zap.Error(err))
		return nil, err
	}

	v.mu.Lock()
	if v.busy {
		v.mu.Unlock()
		msg := fmt.Sprintf("Please wait: the %s tool is still working on your last request.", cfg.ID)
		v.surface.ShowError(msg)
		metrics.RecordTransformation(string(cfg.ID), "busy", 0, 0)
		log.Info("process rejected while busy")
		return nil, errinfo.Conflict(msg, ErrBusy)
	}
	v.busy = true
	v.wg.Add(1)
	v.mu.Unlock()

	req := transform.Request{Files: files, Input: input}
	v.surface.ShowInfo(ph.busy)

	done := make(chan error, 1)
	go func() {
		defer v.wg.Done()
		err := v.run(cfg, ph, req, log)
		v.mu.Lock()
		v.busy = false
		v.mu.Unlock()
		done <- err
		close(done)
	}()
	return done, nil
}

func (v *Invoker) check(cfg types.ToolConfiguration, ph phrases, selected int, input string) error {
	if cfg.ForceDisabled {
		reason := cfg.DisabledReason
		if reason == "" {
			reason = "it requires a server component that is not configured."
		}
		return errinfo.Environment("This feature is not available: "+reason, nil)
	}
	if selected < cfg.MinSelection() {
		if cfg.Multi {
			return errinfo.Validation("Please select at least two PDF files to merge.")
		}
		return errinfo.Validation("Please select a file to %s.", cfg.ID.Verb())
	}
	if cfg.RequiresSecondaryInput && strings.TrimSpace(input) == "" {
		msg := ph.missing
		if msg == "" {
			msg = fmt.Sprintf("Please fill in %s.", cfg.SecondaryInputLabel)
		}
		return errinfo.Validation("%s", msg)
	}
	if v.adapter == nil {
		return errinfo.Environment(fmt.Sprintf("This feature is not available: no %s backend is configured.", cfg.ID), nil)
	}
	return nil
}

func (v *Invoker) run(cfg types.ToolConfiguration, ph phrases, req transform.Request, log *zap.Logger) error {
	start := v.now()
	size := 0
	for _, f := range req.Files {
		size += f.Size()
	}

	artifact, err := v.adapter.Transform(v.base, req)
	elapsed := v.now().Sub(start)
	if err != nil {
		msg := FailureMessage(ph.failing, err)
		v.surface.ShowError(msg)
		metrics.RecordTransformation(string(cfg.ID), "error", size, elapsed)
		log.Warn("transformation failed",
			zap.Int("files", len(req.Files)),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		if errinfo.KindOf(err) != errinfo.KindTransformation {
			return err
		}
		return errinfo.Transformation(msg, err)
	}

	metrics.RecordTransformation(string(cfg.ID), "success", size, elapsed)
	log.Info("transformation finished",
		zap.Int("files", len(req.Files)),
		zap.Int("bytes_in", size),
		zap.Int("bytes_out", len(artifact.Payload)),
		zap.String("file_name", artifact.FileName),
		zap.Duration("duration", elapsed),
	)
	v.sel.Consume(req.Files)
	v.gate.Open(artifact)
	return nil
}

// FailureMessage renders a failed transformation for the banner. Classified
// errors carry their own complete text; anything else is prefixed with the
// tool's failure phrase.
func FailureMessage(prefix string, err error) string {
	var e *errinfo.Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = MsgUnknownError
	}
	if prefix == "" {
		return msg
	}
	return prefix + ": " + msg
}
