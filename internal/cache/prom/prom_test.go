package prom

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/quantbench/quantcache/internal/cache"
)

func TestAdapter(t *testing.T) {
	reg := prometheus.NewRegistry()
	adapter := New(reg, "quantcache", "cache", nil)

	adapter.Hit()
	adapter.Hit()
	adapter.Miss()
	adapter.Evict(cache.EvictExpired)
	adapter.Size(3, 1024)

	assert.Equal(t, float64(2), testutil.ToFloat64(adapter.hits))
	assert.Equal(t, float64(1), testutil.ToFloat64(adapter.misses))
	assert.Equal(t, float64(1), testutil.ToFloat64(adapter.evicts.WithLabelValues("expired")))
	assert.Equal(t, float64(3), testutil.ToFloat64(adapter.sizeEnt))
	assert.Equal(t, float64(1024), testutil.ToFloat64(adapter.sizeBytes))
}
