package cache

import "time"

// TypeStats aggregates the entries of a single cache type.
type TypeStats struct {
	Entries   int   `json:"entries"`
	SizeBytes int64 `json:"size_bytes"`
}

// Stats is a point-in-time view of the cache. The hit/miss counters cover
// the current process lifetime; every other field is computed on demand
// from the metadata catalog, so it can never drift from it.
type Stats struct {
	TotalEntries   int                `json:"total_entries"`
	TotalSizeBytes int64              `json:"total_size_bytes"`
	HitCount       int64              `json:"hit_count"`
	MissCount      int64              `json:"miss_count"`
	HitRate        float64            `json:"hit_rate"`
	OldestEntry    *time.Time         `json:"oldest_entry,omitempty"`
	NewestEntry    *time.Time         `json:"newest_entry,omitempty"`
	ByType         map[Type]TypeStats `json:"by_type"`
}

// Stats computes current cache statistics.
// The hit rate is 0 when no requests have occurred.
func (c *Cache) Stats() Stats {
	stats := Stats{
		HitCount:  c.hits.Load(),
		MissCount: c.misses.Load(),
		ByType:    make(map[Type]TypeStats),
	}
	if total := stats.HitCount + stats.MissCount; total > 0 {
		stats.HitRate = float64(stats.HitCount) / float64(total)
	}
	if !c.enabled {
		return stats
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, meta := range c.index.entries {
		stats.TotalEntries++
		stats.TotalSizeBytes += meta.SizeBytes

		perType := stats.ByType[meta.CacheType]
		perType.Entries++
		perType.SizeBytes += meta.SizeBytes
		stats.ByType[meta.CacheType] = perType

		created := meta.CreatedAt
		if stats.OldestEntry == nil || created.Before(*stats.OldestEntry) {
			oldest := created
			stats.OldestEntry = &oldest
		}
		if stats.NewestEntry == nil || created.After(*stats.NewestEntry) {
			newest := created
			stats.NewestEntry = &newest
		}
	}
	return stats
}
