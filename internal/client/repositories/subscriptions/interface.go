package subscriptions

import (
	"context"

	"github.com/notiapp/notiapp/internal/client/models"
)

// Repository stores the singleton push subscription record. At most one
// record exists at any time, keyed models.SubscriptionID, mirroring the
// browser's single push subscription.
type Repository interface {
	// Save creates or replaces the subscription record.
	Save(ctx context.Context, sub *models.Subscription) error

	// Get returns the current subscription, or common.ErrNotFound.
	Get(ctx context.Context) (*models.Subscription, error)

	// Delete removes the current subscription. Deleting a missing record is
	// not an error.
	Delete(ctx context.Context) error
}
