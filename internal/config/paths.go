package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultLogDir is where the EVE client writes market exports:
// %USERPROFILE%\Documents\EVE\logs\marketlogs on Windows and
// $HOME/.local/share/EVE/logs/marketlogs elsewhere.
func DefaultLogDir() string {
	return defaultLogDir(runtime.GOOS, os.Getenv)
}

func defaultLogDir(goos string, getenv func(string) string) string {
	if goos == "windows" {
		return filepath.Join(getenv("USERPROFILE"), "Documents", "EVE", "logs", "marketlogs")
	}
	return filepath.Join(getenv("HOME"), ".local", "share", "EVE", "logs", "marketlogs")
}

// DefaultDataDir is the per-user config directory for profiles and settings,
// or ./data when the OS does not report one.
func DefaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "data"
	}
	return filepath.Join(dir, "marketwatch")
}
