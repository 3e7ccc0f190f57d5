package changelog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeImpls(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	jsonl, err := NewJSONLStore(filepath.Join(dir, "changes.log"))
	require.NoError(t, err)
	sqlite, err := NewSQLiteStore(filepath.Join(dir, "changes.db"))
	require.NoError(t, err)
	return map[string]Store{"jsonl": jsonl, "sqlite": sqlite}
}

func TestStoreAppendAndQuery(t *testing.T) {
	for name, store := range storeImpls(t) {
		t.Run(name, func(t *testing.T) {
			defer func() { _ = store.Close() }()
			ctx := context.Background()
			base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
			entries := []Entry{
				{RunID: "run-1", Timestamp: base, Record: rec("03/01/2025", "a", CategoryAddition)},
				{RunID: "run-1", Timestamp: base.Add(time.Minute), Record: rec("03/02/2025", "b", CategoryModification)},
				{RunID: "run-2", Timestamp: base.Add(time.Hour), Record: rec("03/01/2025", "a", CategoryUnbalancedDay)},
			}
			for _, e := range entries {
				require.NoError(t, store.Append(ctx, e))
			}

			all, err := store.Query(ctx, Query{})
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "run-1", all[0].RunID)
			assert.Equal(t, entries[0].Record, all[0].Record)

			byRun, err := store.Query(ctx, Query{RunID: "run-2"})
			require.NoError(t, err)
			require.Len(t, byRun, 1)
			assert.Equal(t, CategoryUnbalancedDay, byRun[0].Record.Category)

			byDay, err := store.Query(ctx, Query{Day: "03/02/2025"})
			require.NoError(t, err)
			require.Len(t, byDay, 1)

			byProvider, err := store.Query(ctx, Query{Provider: "a"})
			require.NoError(t, err)
			assert.Len(t, byProvider, 2)

			since, err := store.Query(ctx, Query{Start: base.Add(30 * time.Minute)})
			require.NoError(t, err)
			require.Len(t, since, 1)
			assert.Equal(t, "run-2", since[0].RunID)

			until, err := store.Query(ctx, Query{End: base.Add(30 * time.Minute)})
			require.NoError(t, err)
			assert.Len(t, until, 2)
		})
	}
}

func TestStoreEmptyQuery(t *testing.T) {
	for name, store := range storeImpls(t) {
		t.Run(name, func(t *testing.T) {
			defer func() { _ = store.Close() }()
			res, err := store.Query(context.Background(), Query{})
			require.NoError(t, err)
			assert.Empty(t, res)
		})
	}
}

func TestSQLiteQuerySurfacesCorruptRows(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "c.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Append(ctx, Entry{
		RunID:     "run-1",
		Timestamp: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Record:    rec("03/01/2025", "a", CategoryAddition),
	}))
	_, err = store.db.ExecContext(ctx,
		`INSERT INTO change_log (ts, run_id, day, provider, category, entry) VALUES (0, 'run-1', 'd', 'p', 'c', '{broken')`)
	require.NoError(t, err)

	_, err = store.Query(ctx, Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal record")
}

func TestQueryMatches(t *testing.T) {
	e := Entry{
		RunID:     "run-1",
		Timestamp: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Record:    rec("03/01/2025", "a", CategoryAddition),
	}
	assert.True(t, Query{}.matches(e))
	assert.True(t, Query{RunID: "run-1", Day: "03/01/2025", Provider: "a", Category: CategoryAddition}.matches(e))
	assert.False(t, Query{RunID: "run-2"}.matches(e))
	assert.False(t, Query{Category: CategoryNewProvider}.matches(e))
	assert.False(t, Query{Start: e.Timestamp.Add(time.Second)}.matches(e))
	assert.False(t, Query{End: e.Timestamp.Add(-time.Second)}.matches(e))
}
