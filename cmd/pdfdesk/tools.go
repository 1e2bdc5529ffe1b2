// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfdesk/internal/desk"
	"github.com/pdiddy/pdfdesk/internal/gate"
	"github.com/pdiddy/pdfdesk/internal/message"
	"github.com/pdiddy/pdfdesk/internal/release"
	"github.com/pdiddy/pdfdesk/pkg/types"
)

// maxCredentialAttempts bounds the interactive release prompt.
const maxCredentialAttempts = 3

var toolShort = map[types.ToolID]string{
	types.ToolMerge:    "Merge several PDF files into one, in the order given",
	types.ToolSplit:    "Split a PDF into one file per page, delivered as a ZIP archive",
	types.ToolCompress: "Re-save a PDF with optimized structure and report the size change",
	types.ToolEdit:     "Stamp a line of text onto the first page of a PDF",
	types.ToolProtect:  "Encrypt a PDF with a password",
	types.ToolWord:     "Convert a Word document to PDF (needs docker or podman)",
}

func newToolCmd(id types.ToolID) *cobra.Command {
	tc := types.DefaultTools(true, "")[id]
	use := string(id) + " FILE"
	args := cobra.ExactArgs(1)
	if tc.Multi {
		use = string(id) + " FILE..."
		args = cobra.MinimumNArgs(1)
	}

	c := &cobra.Command{
		Use:   use,
		Short: toolShort[id],
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTool(cmd, id, args)
		},
	}

	c.Flags().String("out", "", "output directory (default from config, \"output\")")
	c.Flags().String("email", "", "email address for the release check (prompted when empty)")
	c.Flags().String("account-password", "", "password for the release check (prompted when empty)")
	switch id {
	case types.ToolMerge:
		c.Flags().StringArray("move", nil, "move a file before merging, as FROM:TO positions starting at 1 (repeatable)")
	case types.ToolEdit:
		c.Flags().String("text", "", "text to stamp on the first page")
	case types.ToolProtect:
		c.Flags().String("password", "", "password to encrypt the PDF with")
	}
	return c
}

// toolOptions is everything runTool reads from flags.
type toolOptions struct {
	moves    []move
	input    string
	email    string
	password string
}

type move struct{ from, to int }

func runTool(cmd *cobra.Command, id types.ToolID, args []string) error {
	opts, err := toolOptionsFromFlags(cmd, id)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = cfg.Release.OutputDir
	}
	dir, err := release.NewDir(outDir)
	if err != nil {
		return err
	}

	store, observers, err := openLedger()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	tools, registry := buildTools(id == types.ToolWord)
	d := desk.New("cli", desk.Config{
		Tools:     tools,
		Registry:  registry,
		Releaser:  dir,
		Observers: append([]gate.Observer{desk.MetricsObserver{}}, observers...),
		Context:   ctx,
	})

	files, err := readFiles(args)
	if err != nil {
		return err
	}

	p := newPrompter(os.Stdin, os.Stderr)
	ref, err := runDesk(ctx, d, id, files, opts, p, os.Stderr)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ref)
	return nil
}

func toolOptionsFromFlags(cmd *cobra.Command, id types.ToolID) (toolOptions, error) {
	var opts toolOptions
	opts.email, _ = cmd.Flags().GetString("email")
	opts.password, _ = cmd.Flags().GetString("account-password")
	switch id {
	case types.ToolMerge:
		raw, _ := cmd.Flags().GetStringArray("move")
		moves, err := parseMoves(raw)
		if err != nil {
			return opts, err
		}
		opts.moves = moves
	case types.ToolEdit:
		opts.input, _ = cmd.Flags().GetString("text")
	case types.ToolProtect:
		opts.input, _ = cmd.Flags().GetString("password")
	}
	return opts, nil
}

// parseMoves converts FROM:TO pairs with 1-based positions into 0-based
// moves.
func parseMoves(raw []string) ([]move, error) {
	moves := make([]move, 0, len(raw))
	for _, r := range raw {
		a, b, ok := strings.Cut(r, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --move %q: expected FROM:TO", r)
		}
		from, err1 := strconv.Atoi(strings.TrimSpace(a))
		to, err2 := strconv.Atoi(strings.TrimSpace(b))
		if err1 != nil || err2 != nil || from < 1 || to < 1 {
			return nil, fmt.Errorf("invalid --move %q: positions are whole numbers starting at 1", r)
		}
		moves = append(moves, move{from: from - 1, to: to - 1})
	}
	return moves, nil
}

// readFiles loads each path as a selectable file. The MIME type comes from
// the extension, falling back to content sniffing.
func readFiles(paths []string) ([]types.SelectableFile, error) {
	files := make([]types.SelectableFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		mimeType := types.MIMETypeByName(p)
		if mimeType == "" {
			mimeType, _, _ = strings.Cut(http.DetectContentType(data), ";")
		}
		files = append(files, types.SelectableFile{
			Name:     filepath.Base(p),
			MIMEType: mimeType,
			Data:     data,
		})
	}
	return files, nil
}

// runDesk drives one tool from selection to release and returns the
// released reference. Banners are echoed to out as they appear.
func runDesk(ctx context.Context, d *desk.Desk, id types.ToolID, files []types.SelectableFile, opts toolOptions, p credentialPrompter, out io.Writer) (string, error) {
	res, err := d.Dispatch(ctx, desk.AddFiles{Tool: id, Files: files})
	if err != nil && res.Added == 0 {
		return "", err
	}
	printSurface(out, d.Channel().State())

	for _, m := range opts.moves {
		if _, err := d.Dispatch(ctx, desk.Reorder{Tool: id, From: m.from, To: m.to}); err != nil {
			return "", err
		}
	}

	res, err = d.Dispatch(ctx, desk.Process{Tool: id, Input: opts.input})
	if err != nil {
		return "", err
	}
	printSurface(out, d.Channel().State())
	select {
	case err = <-res.Done:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if err != nil {
		printSurface(out, d.Channel().State())
		return "", fmt.Errorf("%s failed", id)
	}

	view := d.Modal().View()
	fmt.Fprintln(out, view.Title)
	if view.Note != "" {
		fmt.Fprintln(out, view.Note)
	}

	if err := authenticate(ctx, d, opts, p, out); err != nil {
		d.Modal().Dismiss()
		return "", err
	}

	rr, err := d.Dispatch(ctx, desk.ConfirmDownload{})
	if err != nil {
		return "", err
	}
	printSurface(out, d.Channel().State())
	return rr.Ref, nil
}

// authenticate fills in and submits the release credentials. Values given
// as flags are used once; missing values are prompted for, and a rejected
// prompt is retried a few times.
func authenticate(ctx context.Context, d *desk.Desk, opts toolOptions, p credentialPrompter, out io.Writer) error {
	interactive := opts.email == "" || opts.password == ""
	attempts := 1
	if interactive {
		attempts = maxCredentialAttempts
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		email, password := opts.email, opts.password
		var err error
		if email == "" {
			if email, err = p.Email(); err != nil {
				return err
			}
		}
		if password == "" {
			if password, err = p.Password(); err != nil {
				return err
			}
		}
		if _, err := d.Dispatch(ctx, desk.SetEmail{Value: email}); err != nil {
			return err
		}
		if _, err := d.Dispatch(ctx, desk.SetPassword{Value: password}); err != nil {
			return err
		}
		_, lastErr = d.Dispatch(ctx, desk.Submit{})
		view := d.Modal().View()
		if view.Message != "" {
			fmt.Fprintln(out, view.Message)
		}
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func printSurface(w io.Writer, s message.State) {
	switch {
	case s.Banner != nil && s.Banner.Kind == message.KindError:
		fmt.Fprintln(w, "Error:", s.Banner.Text)
	case s.Banner != nil:
		fmt.Fprintln(w, s.Banner.Text)
	case s.Download != nil:
		fmt.Fprintf(w, "Ready: %s\n", s.Download.FileName)
	}
}

func init() {
	for _, id := range types.AllTools {
		rootCmd.AddCommand(newToolCmd(id))
	}
}
