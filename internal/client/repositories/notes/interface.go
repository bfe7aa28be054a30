package notes

import (
	"context"

	"github.com/notiapp/notiapp/internal/client/models"
)

// Repository describes storage operations for locally persisted notes.
// Implementations are backed by the local SQLite database.
type Repository interface {
	// Add inserts a new note and fills in its store-assigned Id.
	Add(ctx context.Context, note *models.Note) error

	// GetByID returns a note by its local id, or common.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.Note, error)

	// GetAll returns every note, newest first.
	GetAll(ctx context.Context) ([]models.Note, error)

	// GetUnsynced returns notes not yet acknowledged by the remote store.
	GetUnsynced(ctx context.Context) ([]models.Note, error)

	// MarkSynced flips the synced flag for the note with the given clientId.
	MarkSynced(ctx context.Context, clientID string) error

	// MarkSyncedAll marks every given clientId synced, atomically when the
	// implementation can provide a transaction.
	MarkSyncedAll(ctx context.Context, clientIDs []string) error

	// DeleteByID removes a note by its local id.
	DeleteByID(ctx context.Context, id int64) error

	// Clear removes every note.
	Clear(ctx context.Context) error
}
