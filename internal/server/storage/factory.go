package storage

import (
	"context"
	"fmt"

	"github.com/notiapp/notiapp/internal/server/config"
)

// New picks a backend from the configuration.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.StorageBackend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendPostgres:
		return NewPostgres(ctx, cfg.DatabaseDSN)
	case BackendRedis:
		return NewRedis(ctx, cfg.RedisAddr)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
