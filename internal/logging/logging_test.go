package logging

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		logger, err := New(Config{})
		require.NoError(t, err)
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})

	t.Run("level", func(t *testing.T) {
		logger, err := New(Config{Level: "debug", Format: "json"})
		require.NoError(t, err)
		assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
	})

	t.Run("bad level falls back to info", func(t *testing.T) {
		logger, err := New(Config{Level: "shouting"})
		require.NoError(t, err)
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})

	t.Run("unopenable file is an error", func(t *testing.T) {
		_, err := New(Config{File: "/no/such/dir/quantcache.log"})
		assert.Error(t, err)
	})
}

func TestContextPlumbing(t *testing.T) {
	logger, err := New(Config{Level: "warn", Format: "json"})
	require.NoError(t, err)

	ctx := WithContext(context.Background(), logger)
	got := FromContext(ctx)
	assert.Equal(t, logger.GetLevel(), got.GetLevel())
}

func TestTraceID(t *testing.T) {
	id := NewTraceID()
	assert.Len(t, id, 26) // ULID string length

	ctx := ContextWithTraceID(context.Background(), id)
	assert.Equal(t, id, TraceIDFromContext(ctx))
	assert.Equal(t, id, GetOrGenerateTraceID(ctx))

	// A bare context gets a fresh ID.
	fresh := GetOrGenerateTraceID(context.Background())
	assert.NotEmpty(t, fresh)
	assert.NotEqual(t, id, fresh)
}
