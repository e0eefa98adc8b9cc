package hashutil

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// Digest returns the hex BLAKE3-256 digest of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ShortKey returns the first n hex characters of the digest of s, for use as
// a file name. n outside (0, 64] yields the full digest.
func ShortKey(s string, n int) string {
	full := Digest([]byte(s))
	if n <= 0 || n > len(full) {
		return full
	}
	return full[:n]
}
