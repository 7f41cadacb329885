package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDeriveKey verifies deterministic cache key derivation.
func TestDeriveKey(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		ct     Type
		params map[string]any
	}{
		{
			name: "no params",
			key:  "AAPL_quote",
			ct:   TypeMarketData,
		},
		{
			name:   "simple params",
			key:    "AAPL_quote",
			ct:     TypeMarketData,
			params: map[string]any{"symbol": "AAPL", "interval": "1d"},
		},
		{
			name: "nested params",
			key:  "momentum_backtest",
			ct:   TypeBacktestResult,
			params: map[string]any{
				"window":   []int{5, 20, 60},
				"universe": map[string]any{"exchange": "NYSE", "min_cap": 1e9},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key1, err := DeriveKey(tt.key, tt.ct, tt.params)
			require.NoError(t, err)
			require.NotEmpty(t, key1)

			key2, err := DeriveKey(tt.key, tt.ct, tt.params)
			require.NoError(t, err)

			// Verify keys are identical (deterministic)
			assert.Equal(t, key1, key2)

			// Verify key is a SHA256 hash (64 hex characters)
			assert.Len(t, key1, 64)
		})
	}
}

// TestDeriveKey_ParamOrdering verifies that parameter insertion order does
// not change the derived key.
func TestDeriveKey_ParamOrdering(t *testing.T) {
	key1, err := DeriveKey("quote", TypeMarketData, map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)

	key2, err := DeriveKey("quote", TypeMarketData, map[string]any{"b": 2, "a": 1})
	require.NoError(t, err)

	assert.Equal(t, key1, key2)
}

// TestDeriveKey_Distinct verifies that differing inputs produce differing keys.
func TestDeriveKey_Distinct(t *testing.T) {
	base, err := DeriveKey("quote", TypeMarketData, map[string]any{"symbol": "AAPL"})
	require.NoError(t, err)

	otherKey, err := DeriveKey("quote2", TypeMarketData, map[string]any{"symbol": "AAPL"})
	require.NoError(t, err)
	assert.NotEqual(t, base, otherKey)

	otherType, err := DeriveKey("quote", TypeAnalysisResult, map[string]any{"symbol": "AAPL"})
	require.NoError(t, err)
	assert.NotEqual(t, base, otherType)

	otherParams, err := DeriveKey("quote", TypeMarketData, map[string]any{"symbol": "MSFT"})
	require.NoError(t, err)
	assert.NotEqual(t, base, otherParams)
}

// TestDeriveKey_NoSeparatorCollisions verifies that parameter names cannot
// blend into the canonical form: a single name crafted to mimic two
// adjacent parameters must still derive its own key.
func TestDeriveKey_NoSeparatorCollisions(t *testing.T) {
	plain, err := DeriveKey("quote", TypeMarketData, map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)

	crafted, err := DeriveKey("quote", TypeMarketData, map[string]any{"a=1|b": 2})
	require.NoError(t, err)
	assert.NotEqual(t, plain, crafted)

	craftedKey, err := DeriveKey("quote|market-data", TypeMarketData, nil)
	require.NoError(t, err)
	baseKey, err := DeriveKey("quote", TypeMarketData, nil)
	require.NoError(t, err)
	assert.NotEqual(t, baseKey, craftedKey)
}

// TestDeriveKey_Errors verifies input validation and canonicalization failures.
func TestDeriveKey_Errors(t *testing.T) {
	t.Run("empty key", func(t *testing.T) {
		_, err := DeriveKey("", TypeMarketData, nil)
		assert.ErrorIs(t, err, ErrInvalidKey)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := DeriveKey("quote", Type("bogus"), nil)
		assert.ErrorIs(t, err, ErrUnknownType)
	})

	t.Run("non-serializable param", func(t *testing.T) {
		_, err := DeriveKey("quote", TypeMarketData, map[string]any{"cb": func() {}})
		assert.ErrorIs(t, err, ErrKeyDerivation)
	})
}
