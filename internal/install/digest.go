package install

import "golang.org/x/mod/sumdb/dirhash"

// Digest returns a hash of the files under dir, names and contents. Two
// installations of the same runtimes have the same digest.
func Digest(dir string) (string, error) {
	return dirhash.HashDir(dir, "", dirhash.Hash1)
}
