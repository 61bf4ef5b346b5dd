package privacy

import (
	"crypto/sha256"
	"encoding/hex"
)

// FingerprintID returns a short stable digest of an opaque identifier such as
// the visitor cookie, so log lines can be correlated without exposing the
// value that keys server-side session state.
func FingerprintID(id string) string {
	if id == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:6])
}
