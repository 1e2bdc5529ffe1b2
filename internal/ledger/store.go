// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger keeps a history of released artifacts in SQLite. Only
// metadata and a content digest are stored; payloads never touch the
// database.
package ledger

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pdfdesk/pkg/types"
)

const dbFile = "pdfdesk.db"

// timeLayout has a fixed width so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Release is one row of the history.
type Release struct {
	ID         string       `json:"id" yaml:"id"`
	Tool       types.ToolID `json:"tool" yaml:"tool"`
	FileName   string       `json:"file_name" yaml:"file_name"`
	MIMEType   string       `json:"mime_type" yaml:"mime_type"`
	Size       int64        `json:"size" yaml:"size"`
	SHA256     string       `json:"sha256" yaml:"sha256"`
	ReleasedAt time.Time    `json:"released_at" yaml:"released_at"`
}

// QueryOptions filters List.
type QueryOptions struct {
	// Tool restricts results to one tool when non-empty.
	Tool types.ToolID

	// Since drops releases older than this when non-zero.
	Since time.Time

	// MaxResults caps the result count; zero uses the store default.
	MaxResults int
}

// Store manages the release history database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
	now        func() time.Time
}

// NewStore opens or creates cfg.Dir/pdfdesk.db and its schema.
func NewStore(cfg types.LedgerConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, dir: dir, maxResults: maxResults, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory holding the database.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS releases (
			id TEXT PRIMARY KEY,
			tool TEXT NOT NULL,
			file_name TEXT NOT NULL,
			mime_type TEXT NOT NULL,
			size INTEGER NOT NULL,
			sha256 TEXT NOT NULL,
			released_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_releases_tool ON releases(tool)`,
		`CREATE INDEX IF NOT EXISTS idx_releases_released_at ON releases(released_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a released artifact and returns the new row.
func (s *Store) Record(ctx context.Context, a types.PendingArtifact) (Release, error) {
	sum := sha256.Sum256(a.Payload)
	r := Release{
		ID:         uuid.NewString(),
		Tool:       a.ToolID,
		FileName:   a.FileName,
		MIMEType:   a.MIMEType,
		Size:       int64(len(a.Payload)),
		SHA256:     hex.EncodeToString(sum[:]),
		ReleasedAt: s.now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO releases (id, tool, file_name, mime_type, size, sha256, released_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, string(r.Tool), r.FileName, r.MIMEType, r.Size, r.SHA256,
		r.ReleasedAt.Format(timeLayout),
	)
	if err != nil {
		return Release{}, fmt.Errorf("recording release of %s: %w", a.FileName, err)
	}
	return r, nil
}

// List returns releases newest first.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]Release, error) {
	limit := opts.MaxResults
	if limit <= 0 {
		limit = s.maxResults
	}

	query := `SELECT id, tool, file_name, mime_type, size, sha256, released_at FROM releases WHERE 1=1`
	var args []any
	if opts.Tool != "" {
		query += ` AND tool = ?`
		args = append(args, string(opts.Tool))
	}
	if !opts.Since.IsZero() {
		query += ` AND released_at >= ?`
		args = append(args, opts.Since.UTC().Format(timeLayout))
	}
	query += ` ORDER BY released_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying releases: %w", err)
	}
	defer rows.Close()

	var out []Release
	for rows.Next() {
		var (
			r        Release
			tool, at string
		)
		if err := rows.Scan(&r.ID, &tool, &r.FileName, &r.MIMEType, &r.Size, &r.SHA256, &at); err != nil {
			return nil, fmt.Errorf("scanning release: %w", err)
		}
		r.Tool = types.ToolID(tool)
		r.ReleasedAt, err = time.Parse(timeLayout, at)
		if err != nil {
			return nil, fmt.Errorf("parsing release time %q: %w", at, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Counts returns the number of releases per tool.
func (s *Store) Counts(ctx context.Context) (map[types.ToolID]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tool, count(*) FROM releases GROUP BY tool`)
	if err != nil {
		return nil, fmt.Errorf("counting releases: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.ToolID]int)
	for rows.Next() {
		var (
			tool string
			n    int
		)
		if err := rows.Scan(&tool, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[types.ToolID(tool)] = n
	}
	return counts, rows.Err()
}
