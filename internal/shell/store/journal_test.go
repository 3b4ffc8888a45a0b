package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJournal(t *testing.T) *SQLiteJournal {
	t.Helper()
	j, err := NewSQLiteJournal(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestSQLiteJournal_RecordAndGet(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	err := j.Record(ctx, JournalEntry{
		ID:                "entry-1",
		TargetDir:         "/tmp/app",
		Module:            "capability-rest",
		Application:       "myapp",
		SubFolder:         "backend",
		Status:            StatusApplied,
		PostApplyFailures: []string{"welcome-app: boom"},
		Duration:          1500 * time.Millisecond,
	})
	require.NoError(t, err)

	got, err := j.Get(ctx, "entry-1")
	require.NoError(t, err)
	assert.Equal(t, "capability-rest", got.Module)
	assert.Equal(t, "myapp", got.Application)
	assert.Equal(t, "backend", got.SubFolder)
	assert.Equal(t, StatusApplied, got.Status)
	assert.Equal(t, []string{"welcome-app: boom"}, got.PostApplyFailures)
	assert.Equal(t, 1500*time.Millisecond, got.Duration)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSQLiteJournal_Record_AssignsID(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, JournalEntry{Module: "m", Application: "a", Status: StatusFailed, Error: "boom"}))

	entries, err := j.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ID)
	assert.Equal(t, "boom", entries[0].Error)
	assert.Nil(t, entries[0].PostApplyFailures)
}

func TestSQLiteJournal_Record_RejectsUnknownStatus(t *testing.T) {
	j := newTestJournal(t)

	err := j.Record(context.Background(), JournalEntry{Module: "m", Application: "a", Status: "pending"})
	assert.ErrorIs(t, err, ErrWriteFailed)
}

func TestSQLiteJournal_Get_NotFound(t *testing.T) {
	j := newTestJournal(t)

	_, err := j.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteJournal_List(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	entries := []JournalEntry{
		{ID: "1", CreatedAt: base, Module: "capability-rest", Application: "one", Status: StatusApplied},
		{ID: "2", CreatedAt: base.Add(time.Minute), Module: "capability-database", Application: "two", Status: StatusRejected},
		{ID: "3", CreatedAt: base.Add(2 * time.Minute), Module: "capability-welcome", Application: "one", Status: StatusApplied},
	}
	for _, e := range entries {
		require.NoError(t, j.Record(ctx, e))
	}

	tests := []struct {
		name        string
		application string
		limit       int
		want        []string
	}{
		{"all newest first", "", 0, []string{"3", "2", "1"}},
		{"limited", "", 2, []string{"3", "2"}},
		{"by application", "one", 0, []string{"3", "1"}},
		{"unknown application", "none", 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := j.List(ctx, tt.application, tt.limit)
			require.NoError(t, err)
			ids := []string{}
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestSQLiteJournal_Reopen(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	j, err := NewSQLiteJournal(dsn)
	require.NoError(t, err)
	require.NoError(t, j.Record(ctx, JournalEntry{ID: "kept", Module: "m", Application: "a", Status: StatusApplied}))
	require.NoError(t, j.Close())

	j, err = NewSQLiteJournal(dsn)
	require.NoError(t, err)
	defer j.Close()

	got, err := j.Get(ctx, "kept")
	require.NoError(t, err)
	assert.Equal(t, "m", got.Module)
}
