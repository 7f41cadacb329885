package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
)

// catalogFileName is the single durable index of all entries.
const catalogFileName = "metadata.catalog"

// catalogVersion tags the catalog format.
const catalogVersion = 1

// catalogFile is the on-disk representation of the index.
type catalogFile struct {
	Version int                   `json:"version"`
	Entries map[string]*EntryMeta `json:"entries"`
}

// index is the fully-loaded in-memory catalog of all entries' metadata,
// mirrored write-through to <root>/metadata.catalog. Enumeration, stats,
// and bulk eviction run against it without ever touching payload files.
//
// The index is not safe for concurrent use on its own; the Cache serializes
// all access behind its mutex. The catalog is rewritten in full on every
// mutation, which is also why concurrent unsynchronized writers would lose
// updates (single-writer-per-root assumption).
type index struct {
	path    string
	entries map[string]*EntryMeta
	log     zerolog.Logger
}

// loadIndex reads the durable catalog from root. A missing or unparsable
// catalog is non-fatal: the index starts empty, equivalent to a cold cache.
func loadIndex(root string, log zerolog.Logger) *index {
	ix := &index{
		path:    filepath.Join(root, catalogFileName),
		entries: make(map[string]*EntryMeta),
		log:     log,
	}

	data, err := os.ReadFile(ix.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", ix.path).Msg("cache catalog unreadable, starting with empty index")
		}
		return ix
	}

	var file catalogFile
	if unmarshalErr := json.Unmarshal(data, &file); unmarshalErr != nil {
		log.Warn().Err(unmarshalErr).Str("path", ix.path).Msg("cache catalog corrupt, starting with empty index")
		return ix
	}
	if file.Entries != nil {
		ix.entries = file.Entries
	}
	return ix
}

// persist rewrites the full catalog with the same temp-then-rename
// discipline as payload files.
func (ix *index) persist() error {
	data, err := json.Marshal(catalogFile{Version: catalogVersion, Entries: ix.entries})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	tempPath := ix.path + ".tmp"
	if writeErr := os.WriteFile(tempPath, data, 0600); writeErr != nil {
		return fmt.Errorf("%w: %v", ErrStorageIO, writeErr)
	}
	if renameErr := os.Rename(tempPath, ix.path); renameErr != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("%w: %v", ErrStorageIO, renameErr)
	}
	return nil
}

// upsert records metadata for key and immediately persists the catalog.
func (ix *index) upsert(key string, meta *EntryMeta) error {
	ix.entries[key] = meta
	return ix.persist()
}

// remove drops the record for key and persists. Removing an absent key
// is a no-op and does not rewrite the catalog.
func (ix *index) remove(key string) error {
	if _, ok := ix.entries[key]; !ok {
		return nil
	}
	delete(ix.entries, key)
	return ix.persist()
}

// get returns the metadata record for key.
func (ix *index) get(key string) (*EntryMeta, bool) {
	meta, ok := ix.entries[key]
	return meta, ok
}

// size returns the number of catalogued entries.
func (ix *index) size() int {
	return len(ix.entries)
}

// totalSize returns the sum of catalogued payload sizes.
func (ix *index) totalSize() int64 {
	var total int64
	for _, meta := range ix.entries {
		total += meta.SizeBytes
	}
	return total
}

// keysMatching returns the physical keys of all entries satisfying match,
// in sorted order so bulk operations are deterministic.
func (ix *index) keysMatching(match func(*EntryMeta) bool) []string {
	var keys []string
	for key, meta := range ix.entries {
		if match(meta) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}
