package install

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"

	"github.com/goplus/rtsgen/internal/env"
)

// lockDestination serializes the installations to dest across processes.
// Locks live in env.LockDir, named after a hash of the destination.
func lockDestination(dest string) (unlock func(), err error) {
	lockDir, err := env.LockDir()
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256([]byte(dest))
	return lockFile(filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock"))
}
