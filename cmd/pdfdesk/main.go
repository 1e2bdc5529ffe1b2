// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdfdesk CLI. Each tool is a
// subcommand that takes files, runs the transformation, and walks the
// release dialog on the terminal. serve exposes the same desk over HTTP.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/pdfdesk/internal/logging"
	"github.com/pdiddy/pdfdesk/internal/secrets"
	"github.com/pdiddy/pdfdesk/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg is the configuration resolved from pdfdesk.yaml, PDFDESK_* variables
// and defaults before any subcommand runs.
var cfg types.Config

// secretsDir holds key files such as the download signing key.
const secretsDir = ".secrets/"

// rootCmd is the base command for the pdfdesk CLI.
var rootCmd = &cobra.Command{
	Use:   "pdfdesk",
	Short: "Merge, split, compress, stamp, protect and convert PDF documents",
	Long: `pdfdesk runs document tools on local files. Every result is held back
until an email address and password pass the release checks, then written to
the output directory (or, under serve, offered as a signed download link).

Tools: merge, split, compress, edit, protect, word.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			c.Logging.Level = level
		}
		cfg = c
		if err := logging.Init(cfg.Logging); err != nil {
			return err
		}
		if f := viper.ConfigFileUsed(); f != "" {
			logging.L().Debug("using config file", zap.String("path", f))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdfdesk.yaml or ~/.config/pdfdesk/pdfdesk.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdfdesk")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdfdesk"))
		}
	}

	viper.SetEnvPrefix("PDFDESK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && cfgFile != "" {
			fmt.Fprintln(os.Stderr, "Reading config file:", err)
		}
	}
}

func loadSecrets() map[string]string {
	s, err := secrets.Load(secretsDir)
	if err != nil {
		logging.L().Warn("loading secrets", zap.Error(err))
		return map[string]string{}
	}
	return s
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
