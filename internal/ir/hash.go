package ir

import (
	"crypto/md5"
	"encoding/hex"
)

// TokenLength is the length of a content token in hex characters.
const TokenLength = md5.Size * 2

// Token computes the content-addressed identifier for a recording.
// Format: lowercase hex MD5 of the exact content bytes.
//
// The token doubles as the recording's file stem and its DOM element id, so it
// must depend on nothing but the bytes: no length prefix, no domain separator,
// no encoding metadata. MD5 keeps tokens identical to those already published
// by existing sites.
func Token(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}

// IsToken reports whether s has the shape of a content token.
func IsToken(s string) bool {
	if len(s) != TokenLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
