// Package storage abstracts the server's persistence so the HTTP layer does
// not care whether documents land in Postgres, Redis or process memory.
package storage

import (
	"context"

	"github.com/notiapp/notiapp/internal/server/models"
)

// Backend names accepted by New.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Storage is the persistence contract shared by all backends.
//
// Note writes deduplicate on clientId: the client may deliver the same note
// once per sync trigger, and the store must collapse those deliveries into
// one document.
type Storage interface {
	// UpsertNote stores the note, overwriting any document with the same
	// clientId (last write wins). The returned flag is true when the note
	// was new and false when a document for the clientId already existed.
	UpsertNote(ctx context.Context, n *models.Note) (bool, error)

	// ListNotes returns every stored note, newest first.
	ListNotes(ctx context.Context) ([]models.Note, error)

	// SaveSubscription upserts a push subscription by endpoint.
	SaveSubscription(ctx context.Context, sub *models.Subscription) error

	// GetSubscription returns the subscription for endpoint, or
	// common.ErrNotFound.
	GetSubscription(ctx context.Context, endpoint string) (*models.Subscription, error)

	// DeleteSubscription removes the subscription for endpoint and reports
	// whether one existed.
	DeleteSubscription(ctx context.Context, endpoint string) (bool, error)

	// ListSubscriptions returns every stored subscription.
	ListSubscriptions(ctx context.Context) ([]models.Subscription, error)

	// Ping probes backend health.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
