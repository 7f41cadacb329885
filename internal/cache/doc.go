// Package cache provides a typed, file-based cache with TTL expiration for
// expensive query results (market-data fetches, model responses, backtest runs).
//
// This package implements persistent caching to avoid redundant upstream calls
// for recently-fetched data. Key features:
//   - File-based storage partitioned by cache type (cross-platform, no external dependencies)
//   - Per-entry TTL with lazy expiry on read, plus eager sweeps by type, tag, and age
//   - A write-through metadata catalog so enumeration and stats never touch payloads
//   - SHA256-based cache keys derived from canonicalized request parameters
//   - Session hit/miss counters with on-demand aggregates
//
// The cache is designed for CLI and research workflows where queries may be
// repeated within a short time window (e.g., iterating on a backtest or
// re-running an analysis during development). It assumes a single writer per
// cache root; no cross-process coordination is provided.
package cache
