package cache

// EvictReason classifies why an entry left the cache.
type EvictReason int

// Eviction reasons reported to Metrics.
const (
	EvictExpired EvictReason = iota
	EvictTypeCleared
	EvictTagCleared
	EvictAgeCleared
	EvictDeleted
	EvictCorrupt
)

// String returns the metric label for the reason.
func (r EvictReason) String() string {
	switch r {
	case EvictExpired:
		return "expired"
	case EvictTypeCleared:
		return "type_cleared"
	case EvictTagCleared:
		return "tag_cleared"
	case EvictAgeCleared:
		return "age_cleared"
	case EvictDeleted:
		return "deleted"
	case EvictCorrupt:
		return "corrupt"
	}
	return "unknown"
}

// Metrics receives cache events for an observability backend.
// Implementations must be safe for concurrent use.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int, bytes int64)
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
// It is the default when no observability backend is configured.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                          {}
func (NoopMetrics) Miss()                         {}
func (NoopMetrics) Evict(EvictReason)             {}
func (NoopMetrics) Size(entries int, bytes int64) {}

// Ensure NoopMetrics implements the Metrics interface at compile time.
var _ Metrics = NoopMetrics{}
