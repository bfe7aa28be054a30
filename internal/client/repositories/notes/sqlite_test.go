package notes

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notiapp/notiapp/internal/client/models"
	"github.com/notiapp/notiapp/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE notes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  client_id TEXT NOT NULL UNIQUE,
  text TEXT NOT NULL,
  created_at TIMESTAMP NOT NULL,
  synced INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)
	return db
}

func TestAdd_AssignsSequentialIds(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	n1 := &models.Note{ClientId: "c1", Text: "first", CreatedAt: time.Now().UTC()}
	n2 := &models.Note{ClientId: "c2", Text: "second", CreatedAt: time.Now().UTC()}
	require.NoError(t, r.Add(ctx, n1))
	require.NoError(t, r.Add(ctx, n2))

	assert.Equal(t, int64(1), n1.Id)
	assert.Equal(t, int64(2), n2.Id)
}

func TestAdd_ConcurrentWritersDoNotCollide(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	const writers = 10
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n := &models.Note{
				ClientId:  "c" + string(rune('a'+i)),
				Text:      "note",
				CreatedAt: time.Now().UTC(),
			}
			errs[i] = r.Add(ctx, n)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, writers)

	seen := make(map[int64]struct{}, writers)
	for _, n := range all {
		_, dup := seen[n.Id]
		require.False(t, dup, "duplicate id %d", n.Id)
		seen[n.Id] = struct{}{}
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetUnsynced_FiltersBySyncedFlag(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Add(ctx, &models.Note{ClientId: "a", Text: "pending", CreatedAt: time.Now().UTC()}))
	require.NoError(t, r.Add(ctx, &models.Note{ClientId: "b", Text: "done", CreatedAt: time.Now().UTC(), Synced: true}))

	pending, err := r.GetUnsynced(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "a", pending[0].ClientId)
	assert.False(t, pending[0].Synced)
}

func TestMarkSynced(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	n := &models.Note{ClientId: "a", Text: "pending", CreatedAt: time.Now().UTC()}
	require.NoError(t, r.Add(ctx, n))

	require.NoError(t, r.MarkSynced(ctx, "a"))

	got, err := r.GetByID(ctx, n.Id)
	require.NoError(t, err)
	assert.True(t, got.Synced)

	// marking twice stays synced and is not an error
	require.NoError(t, r.MarkSynced(ctx, "a"))

	assert.ErrorIs(t, r.MarkSynced(ctx, "missing"), common.ErrNotFound)
}

func TestMarkSyncedAll_MarksWholeBatch(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Add(ctx, &models.Note{ClientId: "a", Text: "x", CreatedAt: time.Now().UTC()}))
	require.NoError(t, r.Add(ctx, &models.Note{ClientId: "b", Text: "y", CreatedAt: time.Now().UTC()}))

	require.NoError(t, r.MarkSyncedAll(ctx, []string{"a", "b"}))

	pending, err := r.GetUnsynced(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// an empty batch is a no-op
	require.NoError(t, r.MarkSyncedAll(ctx, nil))
}

func TestMarkSyncedAll_IsAtomic(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Add(ctx, &models.Note{ClientId: "a", Text: "x", CreatedAt: time.Now().UTC()}))

	// the unknown id rolls back the whole batch
	err := r.MarkSyncedAll(ctx, []string{"a", "missing"})
	assert.ErrorIs(t, err, common.ErrNotFound)

	pending, err := r.GetUnsynced(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "a", pending[0].ClientId)
}

func TestDeleteByID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	n := &models.Note{ClientId: "a", Text: "x", CreatedAt: time.Now().UTC()}
	require.NoError(t, r.Add(ctx, n))

	require.NoError(t, r.DeleteByID(ctx, n.Id))
	assert.ErrorIs(t, r.DeleteByID(ctx, n.Id), common.ErrNotFound)
}

func TestClear(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Add(ctx, &models.Note{ClientId: "a", Text: "x", CreatedAt: time.Now().UTC()}))
	require.NoError(t, r.Clear(ctx))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
