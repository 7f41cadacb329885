package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// entryFileExtension is the file extension used for payload files.
const entryFileExtension = ".entry"

// payloadVersion tags the on-disk payload envelope so a future encoding
// change is detected as corruption instead of silently misread.
const payloadVersion = 1

// envelope is the on-disk wrapper around an opaque payload blob.
type envelope struct {
	Version int    `json:"version"`
	Payload []byte `json:"payload"`
}

// entryStore persists one file per cached payload under a directory
// partitioned by cache type. It owns only payload bytes; all per-entry
// metadata lives in the catalog.
type entryStore struct {
	root string
	log  zerolog.Logger
}

// newEntryStore creates the type partitions under root if needed.
func newEntryStore(root string, log zerolog.Logger) (*entryStore, error) {
	for _, t := range Types() {
		if err := os.MkdirAll(filepath.Join(root, string(t)), 0750); err != nil {
			return nil, fmt.Errorf("%w: creating partition %s: %v", ErrStorageIO, t, err)
		}
	}
	return &entryStore{root: root, log: log}, nil
}

// path maps a physical key to its payload file. Physical keys are hex
// digests, so no filesystem sanitization is needed.
func (s *entryStore) path(key string, ct Type) string {
	return filepath.Join(s.root, string(ct), key+entryFileExtension)
}

// write serializes the payload into its type partition using a
// write-to-temp-then-rename discipline, so a crash mid-write never leaves
// a half-written file visible under the final name. Returns the persisted
// file size in bytes.
func (s *entryStore) write(key string, ct Type, payload []byte) (int64, error) {
	data, err := json.Marshal(envelope{Version: payloadVersion, Payload: payload})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	filePath := s.path(key, ct)
	tempPath := filePath + ".tmp"
	if writeErr := os.WriteFile(tempPath, data, 0600); writeErr != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageIO, writeErr)
	}
	if renameErr := os.Rename(tempPath, filePath); renameErr != nil {
		_ = os.Remove(tempPath) // Clean up temp file on error
		return 0, fmt.Errorf("%w: %v", ErrStorageIO, renameErr)
	}

	return int64(len(data)), nil
}

// read returns the stored payload, or ok=false when the file is missing,
// unreadable, or corrupt. A corrupt file is deleted as a side effect;
// parse errors never propagate to the caller.
func (s *entryStore) read(key string, ct Type) ([]byte, bool) {
	filePath := s.path(key, ct)
	data, err := os.ReadFile(filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", filePath).Msg("cache entry unreadable, treating as miss")
		}
		return nil, false
	}

	var env envelope
	if unmarshalErr := json.Unmarshal(data, &env); unmarshalErr != nil || env.Version != payloadVersion {
		s.log.Warn().Str("path", filePath).Msg("corrupt cache entry removed")
		_ = os.Remove(filePath)
		return nil, false
	}

	return env.Payload, true
}

// remove deletes the payload file if present. Removing an absent file is
// not an error; the return value reports whether a file was actually removed.
func (s *entryStore) remove(key string, ct Type) bool {
	err := os.Remove(s.path(key, ct))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("key", key).Msg("failed to delete cache entry file")
		}
		return false
	}
	return true
}
