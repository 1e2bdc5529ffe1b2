// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfdesk/internal/ledger"
	"github.com/pdiddy/pdfdesk/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or export the history of released files",
	Long: `History reads the release ledger (data/pdfdesk.db by default). Only file
names, sizes and SHA-256 digests are recorded, never the documents.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent releases, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts, err := historyOptsFromFlags(cmd)
	if err != nil {
		return err
	}
	releases, err := store.List(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatHistory(cmd.OutOrStdout(), releases, jsonOutput)
}

func formatHistory(w io.Writer, releases []ledger.Release, jsonOutput bool) error {
	if jsonOutput {
		if releases == nil {
			releases = []ledger.Release{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(releases)
	}

	if len(releases) == 0 {
		fmt.Fprintln(w, "No releases recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-20s  %-9s  %-40s  %10s  %s\n", "Released", "Tool", "File", "Size", "SHA-256")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, r := range releases {
		name := r.FileName
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		fmt.Fprintf(w, "%-20s  %-9s  %-40s  %10d  %s\n",
			r.ReleasedAt.Local().Format("2006-01-02 15:04:05"), r.Tool, name, r.Size, r.SHA256[:12])
	}
	fmt.Fprintf(w, "\n%d releases\n", len(releases))
	return nil
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the release history as YAML or JSON",
	Long: `Export writes every release matching the filters to stdout, or to the
file named by --output.`,
	RunE: runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts, err := historyOptsFromFlags(cmd)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}
	if err := store.Export(context.Background(), w, ledger.Format(format), opts); err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintln(os.Stderr, "Exported to", output)
	}
	return nil
}

// --- shared helpers ---

func openHistory(cmd *cobra.Command) (*ledger.Store, error) {
	c := cfg.Ledger
	if dir, _ := cmd.Flags().GetString("ledger-dir"); dir != "" {
		c.Dir = dir
	}
	return ledger.NewStore(c)
}

func historyOptsFromFlags(cmd *cobra.Command) (ledger.QueryOptions, error) {
	tool, _ := cmd.Flags().GetString("tool")
	since, _ := cmd.Flags().GetDuration("since")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := ledger.QueryOptions{MaxResults: limit}
	if tool != "" {
		id, ok := types.ParseToolID(tool)
		if !ok {
			return opts, fmt.Errorf("unknown tool %q", tool)
		}
		opts.Tool = id
	}
	if since > 0 {
		opts.Since = time.Now().Add(-since)
	}
	return opts, nil
}

func init() {
	historyCmd.PersistentFlags().String("ledger-dir", "", "directory holding pdfdesk.db (default from config, \"data\")")
	historyCmd.PersistentFlags().String("tool", "", "only releases of this tool")
	historyCmd.PersistentFlags().Duration("since", 0, "only releases newer than this, e.g. 24h")

	historyListCmd.Flags().Int("limit", 0, "maximum releases (0 = use default)")
	historyListCmd.Flags().Bool("json", false, "output releases as JSON")

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	historyExportCmd.Flags().String("output", "", "write to this file instead of stdout")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
