// Package store persists analysis results in a local BadgerDB database.
package store

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "xqengine"

// DataDir returns the platform-specific data directory for the application.
// - macOS: ~/Library/Application Support/xqengine/
// - Linux: ~/.local/share/xqengine/
// - Windows: %APPDATA%/xqengine/
func DataDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(homeDir, "Library", "Application Support")

	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, "AppData", "Roaming")
		}

	default:
		// Linux and other Unix-like: honor XDG_DATA_HOME, fall back
		// to ~/.local/share/.
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, ".local", "share")
		}
	}

	dataDir := filepath.Join(baseDir, appName)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	return dataDir, nil
}

// NetworkDir returns the directory for storing network files.
func NetworkDir() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}

	netDir := filepath.Join(dataDir, "nnue")
	if err := os.MkdirAll(netDir, 0755); err != nil {
		return "", err
	}

	return netDir, nil
}

// DatabaseDir returns the directory for storing the BadgerDB database.
func DatabaseDir() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}

	dbDir := filepath.Join(dataDir, "db")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return "", err
	}

	return dbDir, nil
}
