package env

import (
	"os"
	"path/filepath"
)

// Environment variables providing defaults for the command line.
const (
	CatalogVar = "RTSGEN_CATALOG"
	SourcesVar = "RTSGEN_SOURCES"
)

// WorkDir returns the per-user work directory, <UserCacheDir>/.rtsgen.
func WorkDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userCacheDir, ".rtsgen"), nil
}

// LockDir returns the directory holding the installation locks. It is
// created with 0700 permissions if it doesn't exist.
func LockDir() (string, error) {
	workDir, err := WorkDir()
	if err != nil {
		return "", err
	}
	lockDir := filepath.Join(workDir, "locks")
	if err := os.MkdirAll(lockDir, 0700); err != nil {
		return "", err
	}
	return lockDir, nil
}

// Catalog returns the default target catalogue, empty when unset.
func Catalog() string {
	return os.Getenv(CatalogVar)
}

// Sources returns the default source tree, the current directory when unset.
func Sources() string {
	if dir := os.Getenv(SourcesVar); dir != "" {
		return dir
	}
	return "."
}
