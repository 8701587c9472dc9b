package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "data", "ingestion.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndFindByHash(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	at := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	id1, err := s.SaveIngestion(ctx, Ingestion{Source: "tos.pdf", ContentHash: "h1", Collection: "kbindex",
		Segments: 3, Status: StatusIngested, CreatedAt: at})
	require.NoError(t, err)
	id2, err := s.SaveIngestion(ctx, Ingestion{Source: "tos-copy.pdf", ContentHash: "h1", Collection: "kbindex",
		Segments: 3, Status: StatusIngested})
	require.NoError(t, err)
	_, err = s.SaveIngestion(ctx, Ingestion{Source: "broken.pdf", ContentHash: "h1", Collection: "kbindex",
		Status: StatusFailed, Error: "parse: bad xref"})
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	found, err := s.FindByHash(ctx, "h1")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "tos.pdf", found[0].Source)
	assert.Equal(t, 3, found[0].Segments)
	assert.True(t, at.Equal(found[0].CreatedAt), "created_at %v", found[0].CreatedAt)
	assert.Equal(t, "tos-copy.pdf", found[1].Source)

	none, err := s.FindByHash(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListIngestionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	for _, src := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		_, err := s.SaveIngestion(ctx, Ingestion{Source: src, ContentHash: src, Collection: "kbindex", Status: StatusIngested})
		require.NoError(t, err)
	}
	_, err := s.SaveIngestion(ctx, Ingestion{Source: "d.pdf", ContentHash: "d", Collection: "kbindex",
		Status: StatusFailed, Error: "boom"})
	require.NoError(t, err)

	got, err := s.ListIngestions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d.pdf", got[0].Source)
	assert.Equal(t, "boom", got[0].Error)
	assert.Equal(t, StatusFailed, got[0].Status)
	assert.Equal(t, "c.pdf", got[1].Source)
	assert.Empty(t, got[1].Error)

	all, err := s.ListIngestions(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	assert.True(t, want.Equal(parseTime("2024-03-01 10:30:00")))
	assert.True(t, want.Equal(parseTime([]byte("2024-03-01T10:30:00Z"))))
	assert.True(t, want.Equal(parseTime(want)))
	assert.True(t, parseTime(42).IsZero())
	assert.True(t, parseTime("yesterday").IsZero())
}
