package store

import (
	"os"
	"path/filepath"
)

// AppName names the per-user application data directory.
const AppName = "cidfeed"

// ResolveDataDir picks where state files live: the explicit value when set,
// then the user config dir, then the current directory.
func ResolveDataDir(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if base, err := os.UserConfigDir(); err == nil && base != "" {
		return filepath.Join(base, AppName)
	}
	return "."
}
