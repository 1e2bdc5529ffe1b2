// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfdesk/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.LedgerConfig{Enabled: true, Dir: t.TempDir(), MaxResults: 2})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// tick returns a clock that advances one minute per call.
func tick(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Minute)
	}
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	s.now = tick(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	for _, a := range []types.PendingArtifact{
		{ToolID: types.ToolMerge, FileName: "merged_document_1.pdf", MIMEType: types.MIMEPDF, Payload: []byte("one")},
		{ToolID: types.ToolSplit, FileName: "a_split_pages.zip", MIMEType: types.MIMEZip, Payload: []byte("two")},
		{ToolID: types.ToolMerge, FileName: "merged_document_2.pdf", MIMEType: types.MIMEPDF, Payload: []byte("three")},
	} {
		_, err := s.Record(context.Background(), a)
		require.NoError(t, err)
	}
}

func TestRecord(t *testing.T) {
	s := newTestStore(t)
	r, err := s.Record(context.Background(), types.PendingArtifact{
		ToolID: types.ToolProtect, FileName: "protected_document_1.pdf", MIMEType: types.MIMEPDF, Payload: []byte("abc"),
	})
	require.NoError(t, err)
	assert.Len(t, r.ID, 36)
	assert.Equal(t, int64(3), r.Size)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", r.SHA256)
}

func TestListNewestFirstWithDefaultLimit(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)

	got, err := s.List(context.Background(), QueryOptions{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "merged_document_2.pdf", got[0].FileName)
	assert.Equal(t, "a_split_pages.zip", got[1].FileName)
	assert.True(t, got[0].ReleasedAt.After(got[1].ReleasedAt))
}

func TestListFilters(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)

	got, err := s.List(context.Background(), QueryOptions{Tool: types.ToolMerge, MaxResults: 10})
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, types.ToolMerge, r.Tool)
	}

	got, err = s.List(context.Background(), QueryOptions{
		Since:      time.Date(2026, 3, 1, 9, 2, 0, 0, time.UTC),
		MaxResults: 10,
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCounts(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	counts, err := s.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[types.ToolID]int{types.ToolMerge: 2, types.ToolSplit: 1}, counts)
}

func TestExport(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)

	var buf bytes.Buffer
	require.NoError(t, s.Export(context.Background(), &buf, FormatJSON, QueryOptions{MaxResults: 1}))
	var fromJSON []Release
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fromJSON))
	assert.Len(t, fromJSON, 3, "export ignores the listing limit")

	buf.Reset()
	require.NoError(t, s.Export(context.Background(), &buf, FormatYAML, QueryOptions{Tool: types.ToolSplit}))
	var fromYAML []Release
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	require.Len(t, fromYAML, 1)
	assert.Equal(t, "a_split_pages.zip", fromYAML[0].FileName)

	assert.Error(t, s.Export(context.Background(), &buf, Format("csv"), QueryOptions{}))
}

func TestExportEmpty(t *testing.T) {
	s := newTestStore(t)
	var buf bytes.Buffer
	require.NoError(t, s.Export(context.Background(), &buf, FormatJSON, QueryOptions{}))
	assert.Equal(t, "[]\n", buf.String())
}
