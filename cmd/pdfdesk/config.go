// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/pdfdesk/internal/transform"
	"github.com/pdiddy/pdfdesk/pkg/types"
)

// configDefaults are applied beneath pdfdesk.yaml and the environment.
var configDefaults = map[string]any{
	"logging.level":            "info",
	"logging.format":           "console",
	"logging.output_path":      "stderr",
	"server.addr":              ":8080",
	"server.max_upload_bytes":  64 << 20,
	"server.desk_idle_timeout": 30 * time.Minute,
	"release.output_dir":       "output",
	"release.download_ttl":     10 * time.Minute,
	"ledger.enabled":           true,
	"ledger.dir":               "data",
	"ledger.max_results":       20,
	"convert.image":            transform.DefaultWordImage,
	"convert.disabled":         false,
}

func loadConfig() (types.Config, error) {
	for k, v := range configDefaults {
		viper.SetDefault(k, v)
	}
	var c types.Config
	if err := viper.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("reading configuration: %w", err)
	}
	return c, nil
}
