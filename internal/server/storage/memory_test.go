package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notiapp/notiapp/internal/common"
	"github.com/notiapp/notiapp/internal/server/models"
)

func note(clientID, text string, ts int64) *models.Note {
	return &models.Note{ClientId: clientID, Text: text, Timestamp: ts, SavedAt: time.Now().UTC()}
}

func TestMemory_UpsertNoteDedupsByClientId(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	created, err := s.UpsertNote(ctx, note("c-1", "first", 100))
	require.NoError(t, err)
	assert.True(t, created)

	// same clientId delivered again: overwrite, not duplicate
	created, err = s.UpsertNote(ctx, note("c-1", "first, edited", 200))
	require.NoError(t, err)
	assert.False(t, created)

	all, err := s.ListNotes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "first, edited", all[0].Text)
}

func TestMemory_ListNotesNewestFirst(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	_, err := s.UpsertNote(ctx, note("c-1", "old", 100))
	require.NoError(t, err)
	_, err = s.UpsertNote(ctx, note("c-2", "new", 300))
	require.NoError(t, err)
	_, err = s.UpsertNote(ctx, note("c-3", "middle", 200))
	require.NoError(t, err)

	all, err := s.ListNotes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"new", "middle", "old"}, []string{all[0].Text, all[1].Text, all[2].Text})
}

func TestMemory_SubscriptionLifecycle(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	sub := &models.Subscription{
		Endpoint:     "https://push.example/ep-1",
		Keys:         models.SubscriptionKeys{P256dh: "pk", Auth: "ak"},
		UserName:     "Maria",
		Preferences:  []string{"news"},
		SubscribedAt: time.Now().UTC(),
	}
	require.NoError(t, s.SaveSubscription(ctx, sub))

	// upsert by endpoint keeps a single record
	sub2 := *sub
	sub2.UserName = "Maria K"
	require.NoError(t, s.SaveSubscription(ctx, &sub2))

	all, err := s.ListSubscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Maria K", all[0].UserName)

	got, err := s.GetSubscription(ctx, sub.Endpoint)
	require.NoError(t, err)
	assert.Equal(t, "Maria K", got.UserName)

	existed, err := s.DeleteSubscription(ctx, sub.Endpoint)
	require.NoError(t, err)
	assert.True(t, existed)

	_, err = s.GetSubscription(ctx, sub.Endpoint)
	assert.ErrorIs(t, err, common.ErrNotFound)

	existed, err = s.DeleteSubscription(ctx, sub.Endpoint)
	require.NoError(t, err)
	assert.False(t, existed, "second delete reports nothing to remove")
}
