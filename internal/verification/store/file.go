package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"idflow/internal/verification/models"
	dErrors "idflow/pkg/domain-errors"
	"idflow/pkg/platform/sync"
)

// FileStore keeps one pretty-printed JSON document per session under dir.
// Writes to the same key are serialized within the process; across processes
// the last rename wins.
type FileStore struct {
	dir   string
	locks *sync.ShardedMutex
}

// NewFile creates the directory if needed and returns a store rooted at it.
func NewFile(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{dir: dir, locks: sync.NewShardedMutex()}, nil
}

func (s *FileStore) path(id models.LocalID) string {
	return filepath.Join(s.dir, id.String()+".json")
}

// Write persists the record atomically: a partially written file is never
// visible under the session's name.
func (s *FileStore) Write(_ context.Context, record models.SessionRecord) error {
	id, err := models.ParseLocalID(record.LocalID.String())
	if err != nil {
		return err
	}
	record.LocalID = id

	data, err := encodeRecord(record)
	if err != nil {
		return err
	}

	s.locks.Lock(id.String())
	defer s.locks.Unlock(id.String())

	tmp, err := os.CreateTemp(s.dir, id.String()+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmpName, s.path(id)); err != nil {
		return fmt.Errorf("rename session file: %w", err)
	}
	return nil
}

// Read loads a session. Malformed identifiers and missing files are
// not_found; unreadable content is corrupt_record.
func (s *FileStore) Read(_ context.Context, localID string) (models.SessionRecord, error) {
	id, err := models.ParseLocalID(localID)
	if err != nil {
		return models.SessionRecord{}, err
	}

	s.locks.Lock(id.String())
	data, err := os.ReadFile(s.path(id))
	s.locks.Unlock(id.String())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.SessionRecord{}, dErrors.New(dErrors.CodeNotFound, "Invalid localId")
		}
		return models.SessionRecord{}, dErrors.Wrap(err, dErrors.CodeCorrupt, "Session data corrupted")
	}
	return decodeRecord(data, id)
}

func encodeRecord(record models.SessionRecord) ([]byte, error) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return data, nil
}

// decodeRecord parses a stored record. A record without a token cannot be
// resumed and is treated as corrupt.
func decodeRecord(data []byte, id models.LocalID) (models.SessionRecord, error) {
	var record models.SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return models.SessionRecord{}, dErrors.Wrap(err, dErrors.CodeCorrupt, "Session data corrupted")
	}
	if record.Token == "" {
		return models.SessionRecord{}, dErrors.New(dErrors.CodeCorrupt, "Session data corrupted")
	}
	record.LocalID = id
	return record, nil
}
