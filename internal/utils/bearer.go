package utils

import (
	"errors"
	"strings"
)

// ErrMalformedBearer is returned for Authorization headers that do not carry
// a well-formed bearer token.
var ErrMalformedBearer = errors.New("malformed bearer token")

// ParseBearer extracts the raw token from an Authorization header value.
// The contract is strict: the value must start with "Bearer " (trailing
// space included) followed by a non-empty token. Anything else fails; the
// caller maps the error to 401. This is the single header-parsing helper;
// no call site strips prefixes ad hoc.
func ParseBearer(header string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", ErrMalformedBearer
	}
	raw := header[len(prefix):]
	if strings.TrimSpace(raw) == "" || raw != strings.TrimSpace(raw) {
		return "", ErrMalformedBearer
	}
	return raw, nil
}
