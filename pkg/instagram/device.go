package instagram

import (
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateUUID produces a UUID string. With a non-empty seed the result is
// deterministic (the MD5 of the seed becomes the UUID bytes), so the same
// seed always names the same device. With an empty seed the bytes are random.
func GenerateUUID(seed string, hexOnly bool) string {
	var b [16]byte
	if seed != "" {
		b = md5.Sum([]byte(seed))
	} else {
		_, _ = rand.Read(b[:])
	}

	if hexOnly {
		return hex.EncodeToString(b[:])
	}
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}

// GenerateDeviceID derives an android device identifier from a seed. Only the
// first 16 bytes of the seed participate, matching the identifier the app
// itself would derive.
func GenerateDeviceID(seed string) string {
	if len(seed) > 16 {
		seed = seed[:16]
	}
	return "android-" + GenerateUUID(seed, true)
}

// GenerateADID derives an advertising identifier from a stable per-account
// seed (typically the username).
func GenerateADID(seed string) string {
	if seed == "" {
		seed = GenerateUUID("", false)
	}
	digest := sha256.Sum256([]byte(seed))
	return GenerateUUID(hex.EncodeToString(digest[:]), false)
}
