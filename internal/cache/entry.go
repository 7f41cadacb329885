package cache

import (
	"fmt"
	"time"
)

// Type is a closed category used to partition entries on disk and enable
// type-scoped bulk eviction. Unknown types are rejected at the API boundary
// rather than trusted as partition names.
type Type string

// Known cache types.
const (
	TypeMarketData     Type = "market-data"
	TypeAnalysisResult Type = "analysis-result"
	TypeBacktestResult Type = "backtest-result"
	TypeModelResponse  Type = "model-response"
	TypeUserPreference Type = "user-preference"
)

// Types returns all known cache types in a stable order.
func Types() []Type {
	return []Type{
		TypeMarketData,
		TypeAnalysisResult,
		TypeBacktestResult,
		TypeModelResponse,
		TypeUserPreference,
	}
}

// Valid reports whether t is one of the known cache types.
func (t Type) Valid() bool {
	switch t {
	case TypeMarketData, TypeAnalysisResult, TypeBacktestResult,
		TypeModelResponse, TypeUserPreference:
		return true
	}
	return false
}

// ParseType converts a string to a known Type.
// Returns ErrUnknownType for anything outside the closed set.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}

// EntryMeta is the per-entry metadata record kept in the catalog.
// It never contains the payload; everything needed for enumeration,
// stats, and eviction decisions lives here.
type EntryMeta struct {
	// LogicalKey is the original caller-supplied key.
	LogicalKey string `json:"logical_key"`

	// CacheType is the entry's category, also its storage partition.
	CacheType Type `json:"cache_type"`

	// CreatedAt is the timestamp of the write that produced this entry.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is the expiry deadline; nil means the entry never expires.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// SizeBytes is the size of the persisted payload file.
	SizeBytes int64 `json:"size_bytes"`

	// Tags are free-form labels used for bulk purge.
	Tags []string `json:"tags,omitempty"`

	// AccessCount is incremented on every successful read.
	AccessCount int64 `json:"access_count"`

	// LastAccessed is updated on every successful read.
	LastAccessed time.Time `json:"last_accessed"`
}

// Expired reports whether the entry is past its expiry deadline at now.
// Entries without a deadline never expire.
func (m *EntryMeta) Expired(now time.Time) bool {
	return m.ExpiresAt != nil && now.After(*m.ExpiresAt)
}

// Age returns the duration since the entry was created.
func (m *EntryMeta) Age() time.Duration {
	return time.Since(m.CreatedAt)
}

// TimeUntilExpiration returns the duration until the entry expires.
// Returns 0 if already expired or if the entry never expires.
func (m *EntryMeta) TimeUntilExpiration() time.Duration {
	if m.ExpiresAt == nil {
		return 0
	}
	remaining := time.Until(*m.ExpiresAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// idleSince is the reference time for age-based eviction:
// the last access when one exists, otherwise the creation time.
func (m *EntryMeta) idleSince() time.Time {
	if !m.LastAccessed.IsZero() {
		return m.LastAccessed
	}
	return m.CreatedAt
}

// hasAnyTag reports whether the entry carries at least one of the given tags.
func (m *EntryMeta) hasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range m.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}
