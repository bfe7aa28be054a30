package notifications

import (
	"context"

	"github.com/notiapp/notiapp/internal/client/models"
)

// Repository describes storage operations for the notification history.
type Repository interface {
	// Add inserts a received notification and fills in its Id.
	Add(ctx context.Context, n *models.Notification) error

	// GetByID returns a notification by id, or common.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.Notification, error)

	// GetAll returns the full history, newest first.
	GetAll(ctx context.Context) ([]models.Notification, error)

	// GetUnread returns notifications not yet acknowledged.
	GetUnread(ctx context.Context) ([]models.Notification, error)

	// MarkRead flips the read flag on acknowledgment.
	MarkRead(ctx context.Context, id int64) error

	// Clear removes the whole history.
	Clear(ctx context.Context) error
}
