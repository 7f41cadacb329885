package cache

import "time"

// purge removes every entry whose metadata satisfies match, keeping the
// store and index convergent: a stray index record whose payload file is
// already gone is still removed and still counted, so the two reconverge.
// Returns the number of entries removed. Running the same purge twice with
// no intervening writes removes nothing on the second call.
func (c *Cache) purge(reason EvictReason, match func(*EntryMeta) bool) int {
	if !c.enabled {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0
	}

	removed := 0
	for _, key := range c.index.keysMatching(match) {
		meta, ok := c.index.get(key)
		if !ok {
			continue
		}
		c.store.remove(key, meta.CacheType)
		if err := c.index.remove(key); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("failed to persist catalog during purge")
		}
		removed++
		c.metrics.Evict(reason)
	}

	if removed > 0 {
		c.publishSize()
	}
	return removed
}

// ClearExpired removes every entry whose expiry deadline has passed.
func (c *Cache) ClearExpired() int {
	now := c.now()
	return c.purge(EvictExpired, func(m *EntryMeta) bool { return m.Expired(now) })
}

// ClearType removes every entry of the given type, regardless of expiry.
func (c *Cache) ClearType(ct Type) int {
	return c.purge(EvictTypeCleared, func(m *EntryMeta) bool { return m.CacheType == ct })
}

// ClearTags removes every entry whose tag set intersects tags.
func (c *Cache) ClearTags(tags []string) int {
	if len(tags) == 0 {
		return 0
	}
	return c.purge(EvictTagCleared, func(m *EntryMeta) bool { return m.hasAnyTag(tags) })
}

// ClearOlderThan removes every entry that has not been accessed (fallback:
// was not created) within the given age. An age of 0 removes everything.
func (c *Cache) ClearOlderThan(age time.Duration) int {
	cutoff := c.now().Add(-age)
	return c.purge(EvictAgeCleared, func(m *EntryMeta) bool { return !m.idleSince().After(cutoff) })
}

// CleanupOldEntries removes entries idle for more than the given number of days.
func (c *Cache) CleanupOldEntries(days int) int {
	return c.ClearOlderThan(time.Duration(days) * hoursPerDay * time.Hour)
}
