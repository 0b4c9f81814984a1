package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// StoragePaths contains paths for application storage
type StoragePaths struct {
	DatabasePath     string
	InputHistoryPath string
}

// GetStoragePaths returns the storage paths for the given data directory.
// An empty directory falls back to the XDG state directory.
func GetStoragePaths(dataDir string) StoragePaths {
	if dataDir == "" {
		dataDir = filepath.Join(xdg.StateHome, "neuroai")
	}
	return StoragePaths{
		DatabasePath:     filepath.Join(dataDir, "neuroai.db"),
		InputHistoryPath: filepath.Join(dataDir, "chat_history"),
	}
}
