package scrape

import (
	"crypto/md5"
	"encoding/hex"
)

// identityLen is baked into every persisted history table; changing it
// would orphan all prior identities.
const identityLen = 12

// DeriveID maps a tracked URL to a stable opaque product identity.
// Deterministic across restarts and machines; collision resistance is
// advisory, not cryptographic.
func DeriveID(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])[:identityLen]
}
