// Package appdir resolves the directory where mindvault keeps its own state
// files (the saved vault path and the application config).
package appdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvDataDir overrides the platform app data directory when set.
const EnvDataDir = "MINDVAULT_DATA_DIR"

// Locator returns the absolute path of the application data directory.
// Locators never create the directory; write paths create it on demand.
type Locator func() (string, error)

// Default resolves the data directory for appName: the MINDVAULT_DATA_DIR
// environment variable when set, otherwise a subdirectory of the platform
// user config directory.
func Default(appName string) Locator {
	return func() (string, error) {
		if dir := os.Getenv(EnvDataDir); dir != "" {
			return dir, nil
		}
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("resolve user config dir: %w", err)
		}
		return filepath.Join(base, appName), nil
	}
}

// Fixed pins the data directory to dir.
func Fixed(dir string) Locator {
	return func() (string, error) {
		return dir, nil
	}
}
