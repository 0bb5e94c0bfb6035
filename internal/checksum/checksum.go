// Package checksum fingerprints file contents for change detection.
package checksum

import (
	"os"

	"github.com/cespare/xxhash/v2"
)

// Sum returns the xxhash64 digest of data.
func Sum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// File returns the digest of the file at path.
func File(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return Sum(data), nil
}
