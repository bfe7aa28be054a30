// Package sync reconciles unsynced local notes with the remote store.
//
// Two triggers exist and nothing else: the write path (one remote attempt
// right after a local write, when the client believes it is online) and the
// reconnect path (one batch call when connectivity returns). There is no
// retry loop; a note that misses both triggers simply stays unsynced until
// the next one fires. Both paths are idempotent because the remote store
// dedups by clientId.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/notiapp/notiapp/internal/client/models"
	"github.com/notiapp/notiapp/internal/client/remote"
	"github.com/notiapp/notiapp/internal/client/repositories/notes"
	"github.com/notiapp/notiapp/internal/logging"
	"github.com/notiapp/notiapp/internal/metrics"
)

// OnlineFunc reports the current connectivity belief. It may be stale; a
// wrong "online" only costs one failed remote attempt.
type OnlineFunc func() bool

// Engine owns the note sync state machine.
type Engine struct {
	notes  notes.Repository
	remote remote.Client
	online OnlineFunc
	log    logging.Logger
}

func NewEngine(repo notes.Repository, client remote.Client, online OnlineFunc, log logging.Logger) *Engine {
	if log == nil {
		log = logging.NewDiscard()
	}
	return &Engine{notes: repo, remote: client, online: online, log: log}
}

// SaveNote persists the note locally first, then makes a single write-path
// sync attempt if the client is online. A failed remote attempt is not an
// error: the note stays unsynced and becomes eligible for the next
// reconnect-path sync.
func (e *Engine) SaveNote(ctx context.Context, text string) (*models.Note, error) {
	n := &models.Note{
		ClientId:  uuid.NewString(),
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.notes.Add(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to save note locally: %w", err)
	}

	if e.online == nil || !e.online() {
		return n, nil
	}

	res, err := e.remote.SaveNote(ctx, n.ClientId, n.Text)
	if err != nil || !res.Success {
		metrics.SyncAttemptsTotal.WithLabelValues("write", "failure").Inc()
		e.log.Warn(ctx, "write-path sync failed, note stays unsynced",
			"clientId", n.ClientId, "err", err)
		return n, nil
	}

	if err := e.notes.MarkSynced(ctx, n.ClientId); err != nil {
		return n, fmt.Errorf("failed to mark note synced: %w", err)
	}
	n.Synced = true
	metrics.SyncAttemptsTotal.WithLabelValues("write", "success").Inc()
	return n, nil
}

// SyncPending gathers every unsynced note into one batch sync call and marks
// each note the remote acknowledged. "already_exists" counts as acknowledged:
// it is the dedup outcome for notes whose earlier success response was lost.
// Returns the number of notes marked synced.
func (e *Engine) SyncPending(ctx context.Context) (int, error) {
	pending, err := e.notes.GetUnsynced(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load unsynced notes: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	items := make([]remote.SyncItem, len(pending))
	for i, n := range pending {
		items[i] = remote.SyncItem{
			ClientId:  n.ClientId,
			Text:      n.Text,
			Timestamp: n.CreatedAt.UnixMilli(),
		}
	}

	res, err := e.remote.SyncNotes(ctx, items)
	if err != nil {
		metrics.SyncAttemptsTotal.WithLabelValues("reconnect", "failure").Inc()
		return 0, fmt.Errorf("batch sync failed: %w", err)
	}

	acked := make([]string, 0, len(res.Results))
	for _, r := range res.Results {
		if r.Status == remote.StatusSynced || r.Status == remote.StatusAlreadyExists {
			acked = append(acked, r.ClientId)
		}
	}

	// one transaction for the whole acknowledgement; on failure every note
	// stays pending and the next trigger re-sends the batch
	if err := e.notes.MarkSyncedAll(ctx, acked); err != nil {
		metrics.SyncAttemptsTotal.WithLabelValues("reconnect", "failure").Inc()
		return 0, fmt.Errorf("failed to mark notes synced: %w", err)
	}

	metrics.SyncAttemptsTotal.WithLabelValues("reconnect", "success").Inc()
	e.log.Info(ctx, "reconnect sync complete", "pending", len(pending), "synced", len(acked))
	return len(acked), nil
}
