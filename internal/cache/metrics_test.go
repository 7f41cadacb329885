package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvictReasonString(t *testing.T) {
	assert.Equal(t, "expired", EvictExpired.String())
	assert.Equal(t, "type_cleared", EvictTypeCleared.String())
	assert.Equal(t, "tag_cleared", EvictTagCleared.String())
	assert.Equal(t, "age_cleared", EvictAgeCleared.String())
	assert.Equal(t, "deleted", EvictDeleted.String())
	assert.Equal(t, "corrupt", EvictCorrupt.String())
	assert.Equal(t, "unknown", EvictReason(99).String())
}

// countingMetrics records events for assertions.
type countingMetrics struct {
	hits, misses int
	evicts       map[EvictReason]int
	entries      int
	bytes        int64
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{evicts: make(map[EvictReason]int)}
}

func (m *countingMetrics) Hit()                { m.hits++ }
func (m *countingMetrics) Miss()               { m.misses++ }
func (m *countingMetrics) Evict(r EvictReason) { m.evicts[r]++ }
func (m *countingMetrics) Size(entries int, bytes int64) {
	m.entries = entries
	m.bytes = bytes
}

func TestMetricsEvents(t *testing.T) {
	metrics := newCountingMetrics()
	c, clock := newTestCache(t, WithMetrics(metrics))

	require.NoError(t, c.Set("a", []byte("x"), TypeMarketData, SetOptions{TTLSeconds: 60}))
	require.NoError(t, c.Set("b", []byte("y"), TypeMarketData, SetOptions{}))

	_, ok, err := c.Get("a", TypeMarketData, nil)
	require.NoError(t, err)
	require.True(t, ok)
	_, _, _ = c.Get("absent", TypeMarketData, nil)

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, c.ClearExpired())

	assert.Equal(t, 1, metrics.evicts[EvictExpired])
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 1, metrics.misses)
	assert.Equal(t, 1, metrics.entries)
	assert.Positive(t, metrics.bytes)
}
