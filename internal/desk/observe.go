// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package desk

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/pdfdesk/internal/gate"
	"github.com/pdiddy/pdfdesk/internal/ledger"
	"github.com/pdiddy/pdfdesk/internal/logging"
	"github.com/pdiddy/pdfdesk/internal/metrics"
	"github.com/pdiddy/pdfdesk/pkg/types"
)

type observers []gate.Observer

func fanOut(obs []gate.Observer) gate.Observer {
	if len(obs) == 0 {
		return gate.NopObserver{}
	}
	return observers(obs)
}

func (o observers) Opened(a types.PendingArtifact) {
	for _, ob := range o {
		ob.Opened(a)
	}
}

func (o observers) Submitted(tool types.ToolID, ok bool) {
	for _, ob := range o {
		ob.Submitted(tool, ok)
	}
}

func (o observers) Released(a types.PendingArtifact, ref string) {
	for _, ob := range o {
		ob.Released(a, ref)
	}
}

func (o observers) Dismissed(tool types.ToolID, phase gate.Phase) {
	for _, ob := range o {
		ob.Dismissed(tool, phase)
	}
}

// MetricsObserver counts gate transitions and logs them.
type MetricsObserver struct{}

func (MetricsObserver) Opened(a types.PendingArtifact) {
	metrics.RecordGateEvent(string(a.ToolID), metrics.GateOpened)
	logging.L().Debug("release gate opened",
		zap.String("tool", string(a.ToolID)),
		zap.String("file_name", a.FileName),
	)
}

func (MetricsObserver) Submitted(tool types.ToolID, ok bool) {
	event := metrics.GateValidated
	if !ok {
		event = metrics.GateRejected
	}
	metrics.RecordGateEvent(string(tool), event)
}

func (MetricsObserver) Released(a types.PendingArtifact, ref string) {
	metrics.RecordGateEvent(string(a.ToolID), metrics.GateReleased)
	metrics.RecordRelease(len(a.Payload))
	logging.L().Info("artifact released",
		zap.String("tool", string(a.ToolID)),
		zap.String("file_name", a.FileName),
		zap.Int("size", len(a.Payload)),
		zap.String("ref", ref),
	)
}

func (MetricsObserver) Dismissed(tool types.ToolID, phase gate.Phase) {
	metrics.RecordGateEvent(string(tool), metrics.GateDismissed)
	logging.L().Debug("release gate dismissed",
		zap.String("tool", string(tool)),
		zap.String("phase", string(phase)),
	)
}

// Recorder persists released artifacts. *ledger.Store implements it.
type Recorder interface {
	Record(ctx context.Context, a types.PendingArtifact) (ledger.Release, error)
}

// LedgerObserver writes every release to a Recorder. Failures are logged;
// the release itself has already happened.
type LedgerObserver struct {
	gate.NopObserver
	Recorder Recorder
	Timeout  time.Duration
}

func (o LedgerObserver) Released(a types.PendingArtifact, _ string) {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	rel, err := o.Recorder.Record(ctx, a)
	if err != nil {
		logging.L().Warn("recording release failed",
			zap.String("file_name", a.FileName),
			zap.Error(err),
		)
		return
	}
	logging.L().Debug("release recorded", zap.String("id", rel.ID))
}
