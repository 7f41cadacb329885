// Package version exposes the quantcache build version.
package version

// version is overridden at build time via -ldflags "-X".
var version = "dev"

// GetVersion returns the quantcache build version.
func GetVersion() string {
	return version
}
