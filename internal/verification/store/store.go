// Package store persists local verification session records.
//
// Backends:
//   - FileStore: one JSON file per session, the default
//   - RedisStore: shared state with TTL eviction
//   - InMemoryStore: throwaway runs, sessions are lost on restart
package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"idflow/internal/platform/config"
	"idflow/internal/verification/models"
)

// Store is implemented by every backend.
type Store interface {
	Write(ctx context.Context, record models.SessionRecord) error
	Read(ctx context.Context, localID string) (models.SessionRecord, error)
}

// New selects the backend named by cfg. The redis backend requires a client.
func New(cfg config.SessionConfig, client *redis.Client) (Store, error) {
	switch cfg.Backend {
	case config.SessionBackendRedis:
		if client == nil {
			return nil, fmt.Errorf("session backend %q requires REDIS_URL", cfg.Backend)
		}
		return NewRedis(client, cfg.TTL), nil
	case config.SessionBackendMemory:
		return NewInMemory(), nil
	case config.SessionBackendFile, "":
		return NewFile(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*RedisStore)(nil)
	_ Store = (*InMemoryStore)(nil)
)
