// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"go.uber.org/zap"

	"github.com/pdiddy/pdfdesk/internal/container"
	"github.com/pdiddy/pdfdesk/internal/desk"
	"github.com/pdiddy/pdfdesk/internal/errinfo"
	"github.com/pdiddy/pdfdesk/internal/gate"
	"github.com/pdiddy/pdfdesk/internal/ledger"
	"github.com/pdiddy/pdfdesk/internal/logging"
	"github.com/pdiddy/pdfdesk/internal/transform"
	"github.com/pdiddy/pdfdesk/pkg/types"
)

// buildTools returns the tool configurations and adapters. The Word tool is
// probed only when needWord is set; otherwise it is reported unavailable
// without touching the container runtime.
func buildTools(needWord bool) (map[types.ToolID]types.ToolConfiguration, transform.Registry) {
	var word *transform.Word
	reason := ""
	switch {
	case cfg.Convert.Disabled:
		reason = "Word to PDF conversion is disabled in the configuration."
	case !needWord:
		reason = "Word to PDF conversion was not requested."
	default:
		rt, err := container.DetectRuntime()
		if err != nil {
			reason = "no container runtime (docker or podman) was found."
			logging.L().Info("word tool disabled", zap.Error(err))
			break
		}
		w, err := transform.NewWord(rt, cfg.Convert.Image)
		if err != nil {
			reason = errinfo.Message(err, "the converter image is missing.")
			logging.L().Info("word tool disabled", zap.Error(err))
			break
		}
		word = w
	}
	return types.DefaultTools(word != nil, reason), transform.NewRegistry(transform.NewPDF(), word)
}

// openLedger opens the release history when it is enabled. The returned
// observers are empty when it is not.
func openLedger() (*ledger.Store, []gate.Observer, error) {
	if !cfg.Ledger.Enabled {
		return nil, nil, nil
	}
	store, err := ledger.NewStore(cfg.Ledger)
	if err != nil {
		return nil, nil, err
	}
	return store, []gate.Observer{desk.LedgerObserver{Recorder: store}}, nil
}
