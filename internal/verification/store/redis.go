package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"idflow/internal/verification/models"
	dErrors "idflow/pkg/domain-errors"
)

const sessionKeyPrefix = "idflow:session:"

// RedisStore persists sessions in Redis with a TTL, for deployments where
// several instances share session state.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis constructs a Redis-backed session store. A zero ttl keeps records
// until evicted by Redis.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id models.LocalID) string {
	return sessionKeyPrefix + id.String()
}

func (s *RedisStore) Write(ctx context.Context, record models.SessionRecord) error {
	id, err := models.ParseLocalID(record.LocalID.String())
	if err != nil {
		return err
	}
	record.LocalID = id

	data, err := encodeRecord(record)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, sessionKey(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("write session to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Read(ctx context.Context, localID string) (models.SessionRecord, error) {
	id, err := models.ParseLocalID(localID)
	if err != nil {
		return models.SessionRecord{}, err
	}

	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.SessionRecord{}, dErrors.New(dErrors.CodeNotFound, "Invalid localId")
		}
		return models.SessionRecord{}, fmt.Errorf("read session from redis: %w", err)
	}
	return decodeRecord(data, id)
}
