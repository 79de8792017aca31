package validator

import (
	"crypto/hmac"
	"crypto/sha1" // #nosec G505 -- HMAC-SHA1 is mandated by the signing scheme.
	"sort"
	"strings"
)

// ComputeWithParams returns the expected signature for a request to url carrying the given parameters.
// The signed string is the url followed by every key and value, sorted by key in byte order,
// without any separators.
func ComputeWithParams(secret, url string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(url)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}

	mac := hmac.New(sha1.New, []byte(secret))
	// hash.Hash never returns an error on write
	_, _ = mac.Write([]byte(b.String()))
	return Encode(mac.Sum(nil))
}

// ComputeForURL returns the expected signature for a request where only the url is signed.
func ComputeForURL(secret, url string) string {
	return ComputeWithParams(secret, url, nil)
}
