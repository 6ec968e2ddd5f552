package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idflow/internal/platform/config"
	"idflow/internal/verification/models"
	dErrors "idflow/pkg/domain-errors"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	st := NewInMemory()
	rec := models.SessionRecord{Token: "tok", InterviewID: "int", LocalID: models.NewLocalID()}

	require.NoError(t, st.Write(ctx, rec))

	got, err := st.Read(ctx, rec.LocalID.String())
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = st.Read(ctx, models.NewLocalID().String())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = st.Read(ctx, "bogus")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestNew(t *testing.T) {
	t.Run("file backend by default", func(t *testing.T) {
		st, err := New(config.SessionConfig{Dir: t.TempDir()}, nil)
		require.NoError(t, err)
		assert.IsType(t, &FileStore{}, st)
	})

	t.Run("memory backend", func(t *testing.T) {
		st, err := New(config.SessionConfig{Backend: config.SessionBackendMemory}, nil)
		require.NoError(t, err)
		assert.IsType(t, &InMemoryStore{}, st)
	})

	t.Run("redis backend requires a client", func(t *testing.T) {
		_, err := New(config.SessionConfig{Backend: config.SessionBackendRedis}, nil)
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := New(config.SessionConfig{Backend: "etcd"}, nil)
		assert.ErrorContains(t, err, "unknown session backend")
	})
}
