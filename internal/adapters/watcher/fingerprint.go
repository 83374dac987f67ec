package watcher

import (
	"os"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a content hash of the file at path. A missing or
// unreadable file yields zero and false.
func Fingerprint(path string) (uint64, bool) {
	data, err := os.ReadFile(path) //nolint:gosec // path is the configured file
	if err != nil {
		return 0, false
	}
	return xxhash.Sum64(data), true
}
