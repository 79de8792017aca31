package validator

import (
	"crypto/sha256"
)

// HashBody returns the base64 encoded SHA-256 digest of body.
func HashBody(body []byte) string {
	sum := sha256.Sum256(body)
	return Encode(sum[:])
}

// BodyHashMatches reports whether claimed is exactly the hash of body.
func BodyHashMatches(body []byte, claimed string) bool {
	return equal(HashBody(body), claimed)
}
