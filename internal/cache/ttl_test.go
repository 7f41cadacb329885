package cache

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateTTL(t *testing.T) {
	assert.NoError(t, ValidateTTL(120))
	assert.NoError(t, ValidateTTL(NoExpiry))
	assert.ErrorIs(t, ValidateTTL(10), ErrInvalidTTL)
	assert.ErrorIs(t, ValidateTTL(MaxTTLSeconds+1), ErrInvalidTTL)
}

func TestTTLEnv(t *testing.T) {
	t.Run("TTL", func(t *testing.T) {
		t.Setenv(EnvTTLSeconds, "500")
		assert.Equal(t, 500, TTLFromEnv())

		t.Setenv(EnvTTLSeconds, "not-a-number")
		assert.Equal(t, DefaultTTLSeconds, TTLFromEnv())

		t.Setenv(EnvTTLSeconds, "1") // below minimum
		assert.Equal(t, DefaultTTLSeconds, TTLFromEnv())
	})

	t.Run("Enabled", func(t *testing.T) {
		os.Unsetenv(EnvEnabled)
		assert.True(t, EnabledFromEnv())

		t.Setenv(EnvEnabled, "false")
		assert.False(t, EnabledFromEnv())

		t.Setenv(EnvEnabled, "maybe")
		assert.True(t, EnabledFromEnv())
	})

	t.Run("Dir", func(t *testing.T) {
		t.Setenv(EnvDir, "/tmp/qc")
		assert.Equal(t, "/tmp/qc", DirFromEnv())
	})
}

func TestParseTTL(t *testing.T) {
	ttl, err := ParseTTL("3600")
	assert.NoError(t, err)
	assert.Equal(t, 3600, ttl)

	ttl, err = ParseTTL("1h")
	assert.NoError(t, err)
	assert.Equal(t, 3600, ttl)

	ttl, err = ParseTTL("1h30m")
	assert.NoError(t, err)
	assert.Equal(t, 5400, ttl)

	_, err = ParseTTL("invalid")
	assert.Error(t, err)

	_, err = ParseTTL("5s") // below minimum
	assert.ErrorIs(t, err, ErrInvalidTTL)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "30s", FormatDuration(30*time.Second))
	assert.Equal(t, "5m", FormatDuration(5*time.Minute))
	assert.Equal(t, "2h", FormatDuration(2*time.Hour))
	assert.Equal(t, "2h30m", FormatDuration(2*time.Hour+30*time.Minute))
	assert.Equal(t, "3d", FormatDuration(72*time.Hour))
	assert.Equal(t, "3d2h", FormatDuration(74*time.Hour))
}
