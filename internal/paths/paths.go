// Package paths resolves the configuration and cache directory locations
// for trestle.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "TRESTLE_CONFIG_DIR"
	EnvCacheDir  = "TRESTLE_CACHE_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	userCacheDir  func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	userCacheDir:  os.UserCacheDir,
}

// DefaultConfigDir returns the platform-specific default configuration
// directory, holding config.yaml and presets.csv.
//
// Linux:   $XDG_CONFIG_HOME/trestle (fallback ~/.config/trestle)
// macOS:   ~/Library/Application Support/trestle
// Windows: %APPDATA%/trestle
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "trestle"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "trestle"), nil
	default:
		// macOS and Windows use os.UserConfigDir which returns
		// ~/Library/Application Support on macOS and %APPDATA% on Windows.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "trestle"), nil
	}
}

// DefaultCacheDir returns the platform-specific default cache directory,
// holding the backups taken before write overwrites a source file.
//
// Linux:   $XDG_CACHE_HOME/trestle (fallback ~/.cache/trestle)
// macOS:   ~/Library/Caches/trestle
// Windows: %LocalAppData%/trestle
func DefaultCacheDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			return filepath.Join(xdg, "trestle"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".cache", "trestle"), nil
	default:
		dir, err := platformDir.userCacheDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "trestle"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > TRESTLE_CONFIG_DIR env > DefaultConfigDir().
//
// If flag is non-empty it wins. Otherwise the TRESTLE_CONFIG_DIR
// environment variable is checked. If neither is set, the platform default
// is returned.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveCacheDir returns the cache directory following the precedence
// chain: TRESTLE_CACHE_DIR env > DefaultCacheDir().
func ResolveCacheDir() (string, error) {
	if env := os.Getenv(EnvCacheDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultCacheDir()
}
