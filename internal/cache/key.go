package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// keyMaterial is the canonical form hashed into a physical key. The whole
// structure is JSON-encoded so the representation stays injective: logical
// keys or parameter names containing separator characters cannot run
// together with neighbouring fields.
type keyMaterial struct {
	Key    string         `json:"key"`
	Type   Type           `json:"type"`
	Params map[string]any `json:"params,omitempty"`
}

// DeriveKey turns (logical key, cache type, parameters) into a stable
// physical key: a 64-character hex SHA256 digest over the canonical JSON
// representation of the inputs.
//
// The function is pure: identical inputs yield identical output regardless
// of parameter map insertion order (encoding/json emits map keys in sorted
// order at every nesting level). Parameter values that cannot be
// serialized (channels, functions, NaN) fail with ErrKeyDerivation; the
// failure is fatal only to the single call.
func DeriveKey(logicalKey string, ct Type, params map[string]any) (string, error) {
	if logicalKey == "" {
		return "", ErrInvalidKey
	}
	if !ct.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, ct)
	}

	canonical, err := json.Marshal(keyMaterial{Key: logicalKey, Type: ct, Params: params})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
