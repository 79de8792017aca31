package validator

import (
	"encoding/base64"
	"net/url"
)

// Encode returns the standard base64 encoding of b, with padding.
func Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeQueryValue reverses the percent-encoding of a single query value.
// Characters that are not part of a percent-escape, including '+', are kept as is.
func DecodeQueryValue(raw string) (string, error) {
	return url.PathUnescape(raw)
}
