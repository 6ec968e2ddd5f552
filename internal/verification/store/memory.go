package store

import (
	"context"
	"sync"

	"idflow/internal/verification/models"
	dErrors "idflow/pkg/domain-errors"
)

// InMemoryStore keeps encoded records in a map, for local runs where sessions
// need not survive a restart.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[models.LocalID][]byte
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[models.LocalID][]byte)}
}

func (s *InMemoryStore) Write(_ context.Context, record models.SessionRecord) error {
	id, err := models.ParseLocalID(record.LocalID.String())
	if err != nil {
		return err
	}
	record.LocalID = id

	data, err := encodeRecord(record)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = data
	return nil
}

func (s *InMemoryStore) Read(_ context.Context, localID string) (models.SessionRecord, error) {
	id, err := models.ParseLocalID(localID)
	if err != nil {
		return models.SessionRecord{}, err
	}

	s.mu.RLock()
	data, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return models.SessionRecord{}, dErrors.New(dErrors.CodeNotFound, "Invalid localId")
	}
	return decodeRecord(data, id)
}
