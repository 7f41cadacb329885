package cache

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// TTL configuration constants and defaults.
const (
	// DefaultTTLSeconds is the default cache TTL (1 hour).
	DefaultTTLSeconds = 3600

	// MinTTLSeconds is the minimum allowed TTL (1 minute).
	MinTTLSeconds = 60

	// MaxTTLSeconds is the maximum allowed TTL (7 days).
	MaxTTLSeconds = 604800

	// NoExpiry requests an entry that never expires.
	NoExpiry = -1

	// minutesPerHour is used for duration formatting calculations.
	minutesPerHour = 60

	// hoursPerDay is used for duration formatting calculations.
	hoursPerDay = 24

	// EnvTTLSeconds is the environment variable for overriding the default TTL.
	EnvTTLSeconds = "QUANTCACHE_TTL_SECONDS"

	// EnvEnabled is the environment variable for enabling/disabling the cache.
	EnvEnabled = "QUANTCACHE_ENABLED"

	// EnvDir is the environment variable for the cache root directory.
	EnvDir = "QUANTCACHE_DIR"
)

// ErrInvalidTTL is returned for TTLs outside the allowed range.
var ErrInvalidTTL = fmt.Errorf("TTL must be between %d and %d seconds", MinTTLSeconds, MaxTTLSeconds)

// ValidateTTL checks a default-TTL value. NoExpiry is always accepted.
func ValidateTTL(seconds int) error {
	if seconds == NoExpiry {
		return nil
	}
	if seconds < MinTTLSeconds || seconds > MaxTTLSeconds {
		return fmt.Errorf("%w: got %d", ErrInvalidTTL, seconds)
	}
	return nil
}

// TTLFromEnv reads the default TTL from the environment or returns the
// built-in default. Out-of-range or unparsable values fall back to the default.
func TTLFromEnv() int {
	envVal := os.Getenv(EnvTTLSeconds)
	if envVal == "" {
		return DefaultTTLSeconds
	}

	ttl, err := strconv.Atoi(envVal)
	if err != nil {
		return DefaultTTLSeconds
	}
	if ValidateTTL(ttl) != nil {
		return DefaultTTLSeconds
	}
	return ttl
}

// EnabledFromEnv reads the cache enabled flag from the environment.
// The cache is enabled by default, including on parse errors.
func EnabledFromEnv() bool {
	envVal := os.Getenv(EnvEnabled)
	if envVal == "" {
		return true
	}

	enabled, err := strconv.ParseBool(envVal)
	if err != nil {
		return true
	}
	return enabled
}

// DirFromEnv reads the cache root directory from the environment.
// Returns an empty string if not set (caller should use the configured default).
func DirFromEnv() string {
	return os.Getenv(EnvDir)
}

// ParseTTL parses a TTL string in various formats:
// - Integer seconds: "3600".
// - Duration string: "1h", "30m", "1h30m".
func ParseTTL(s string) (int, error) {
	if seconds, err := strconv.Atoi(s); err == nil {
		if validateErr := ValidateTTL(seconds); validateErr != nil {
			return 0, validateErr
		}
		return seconds, nil
	}

	duration, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid TTL format: %w", err)
	}

	seconds := int(duration.Seconds())
	if validateErr := ValidateTTL(seconds); validateErr != nil {
		return 0, validateErr
	}
	return seconds, nil
}

// FormatDuration formats a duration in a human-readable way.
// Examples: "1h", "30m", "5m30s".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	if d < hoursPerDay*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % minutesPerHour
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if hours == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd%dh", days, hours)
}
