// Package validator verifies that inbound webhook requests were signed by a
// holder of the shared auth token and were not modified in transit.
package validator

import (
	"crypto/hmac"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	// Header carrying the claimed signature of a request.
	SignatureHeader = "X-Twilio-Signature"
	// Query parameter carrying the body hash commitment of raw body requests.
	BodyHashParam = "bodySHA256"
)

var ErrEmptySecret = errors.New("the secret used to validate requests must not be empty")

// RequestValidator checks requests against a single secret.
// It is safe for concurrent use.
type RequestValidator struct {
	secret string
}

// Request is the payload of a webhook request, either a FormRequest or a RawBodyRequest.
type Request interface {
	validate(v *RequestValidator, url, signature string) bool
}

// FormRequest is a form encoded request, all form fields are part of the signature.
type FormRequest struct {
	Params map[string]string
}

// RawBodyRequest is a request with an arbitrary body, e.g. JSON.
// The body is bound to the signature through the bodySHA256 query parameter.
type RawBodyRequest struct {
	Body []byte
}

// Create a new validator for the given secret
func NewRequestValidator(secret string) (*RequestValidator, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &RequestValidator{secret: secret}, nil
}

// Validate dispatches to the verification matching the type of req.
// A nil request is never valid.
func (v *RequestValidator) Validate(url string, req Request, signature string) bool {
	if req == nil {
		return false
	}
	return req.validate(v, url, signature)
}

// ValidateForm reports whether signature was computed over url and params.
func (v *RequestValidator) ValidateForm(url string, params map[string]string, signature string) bool {
	return equal(ComputeWithParams(v.secret, url, params), signature)
}

// ValidateBodyRequest reports whether the url contains a bodySHA256 parameter matching body
// and signature was computed over the full url.
func (v *RequestValidator) ValidateBodyRequest(url string, body []byte, signature string) bool {
	claimedHash, ok := bodyHashFromURL(url)
	if !ok {
		return false
	}
	if !BodyHashMatches(body, claimedHash) {
		return false
	}
	return equal(ComputeForURL(v.secret, url), signature)
}

// ValidateBody reports whether hash is the body hash of body.
func (v *RequestValidator) ValidateBody(body []byte, hash string) bool {
	return BodyHashMatches(body, hash)
}

func (r FormRequest) validate(v *RequestValidator, url, signature string) bool {
	return v.ValidateForm(url, r.Params, signature)
}

func (r RawBodyRequest) validate(v *RequestValidator, url, signature string) bool {
	return v.ValidateBodyRequest(url, r.Body, signature)
}

// Extract the decoded value of the first bodySHA256 parameter from the query of rawURL.
func bodyHashFromURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	for _, pair := range strings.Split(u.RawQuery, "&") {
		key, value, _ := strings.Cut(pair, "=")
		key, err = DecodeQueryValue(key)
		if err != nil || key != BodyHashParam {
			continue
		}
		value, err = DecodeQueryValue(value)
		if err != nil {
			return "", false
		}
		return value, true
	}
	return "", false
}

// BodyHashURL appends the bodySHA256 commitment for body to rawURL.
// This is what a signer does before signing a raw body request.
func BodyHashURL(rawURL string, body []byte) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse url '%s': %w", rawURL, err)
	}
	if u.Fragment != "" || strings.HasSuffix(rawURL, "#") {
		return "", fmt.Errorf("url '%s' must not contain a fragment", rawURL)
	}

	sep := "&"
	switch {
	case !strings.Contains(rawURL, "?"):
		sep = "?"
	case strings.HasSuffix(rawURL, "?"), strings.HasSuffix(rawURL, "&"):
		sep = ""
	}
	return rawURL + sep + BodyHashParam + "=" + url.QueryEscape(HashBody(body)), nil
}

// Compare in constant time, a mismatch reveals nothing about the matching prefix.
func equal(expected, actual string) bool {
	return hmac.Equal([]byte(expected), []byte(actual))
}
