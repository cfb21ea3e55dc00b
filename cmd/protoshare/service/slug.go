package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

// DefaultSlugLength is used when no explicit length is configured
const DefaultSlugLength = 8

// NewSlug produces a URL-safe identifier of the requested length from
// cryptographically random bytes. It fails only when the system's random
// source is unavailable, in which case the enclosing operation cannot
// proceed safely.
func NewSlug(length int) (string, error) {
	if length <= 0 {
		length = DefaultSlugLength
	}

	var b strings.Builder
	for b.Len() < length {
		// base64url expands 3 bytes into 4 characters; padding and any
		// residue characters are stripped below
		raw := make([]byte, (length*3+3)/4+2)
		if _, err := rand.Read(raw); err != nil {
			return "", fmt.Errorf("random source unavailable: %w", err)
		}
		encoded := base64.RawURLEncoding.EncodeToString(raw)
		for _, r := range encoded {
			if isSlugRune(r) {
				b.WriteRune(r)
				if b.Len() == length {
					break
				}
			}
		}
	}

	return b.String(), nil
}

func isSlugRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_':
		return true
	}
	return false
}
