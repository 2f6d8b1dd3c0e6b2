// Package checksum computes content digests for generated pages.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

const shortLen = 12

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Short returns an abbreviated digest of data, suitable for log lines.
func Short(data []byte) string {
	return Sum(data)[:shortLen]
}
