// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package keynos

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

const (
	// AccessKeySize is the size of an access key in bytes.
	AccessKeySize = 16

	// RecommendedEntropyLen is how many random bytes NewAccessKey reads.
	// Callers of GenerateAccessKey should supply at least this much.
	RecommendedEntropyLen = 512

	// groupSize is the number of characters between spaces in display form.
	groupSize = 4
)

// GenerateAccessKey condenses high-entropy random input into an access key.
// The input is hashed with SHA256 and the first 16 bytes of the digest are
// returned as 32 uppercase hex characters.
//
// GenerateAccessKey does not produce randomness itself: the same input always
// yields the same key. Supply at least RecommendedEntropyLen bytes from a
// cryptographically secure source.
func GenerateAccessKey(random []byte) string {
	digest := sha256.Sum256(random)
	return strings.ToUpper(hex.EncodeToString(digest[:AccessKeySize]))
}

// NewAccessKey reads RecommendedEntropyLen bytes from r and returns the
// access key generated from them. r is usually a CSPRNG; tests can pass a
// fixed reader to get reproducible keys.
func NewAccessKey(r io.Reader) (string, error) {
	buf := make([]byte, RecommendedEntropyLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("could not read %d bytes of entropy: %w", RecommendedEntropyLen, err)
	}
	return GenerateAccessKey(buf), nil
}

// AddSpaces groups key into blocks of four characters separated by single
// spaces, e.g. "0A1B2C3D4E5F" becomes "0A1B 2C3D 4E5F". Existing spaces are
// removed first, so AddSpaces is idempotent.
func AddSpaces(key string) string {
	key = RemoveSpaces(key)

	var b strings.Builder
	b.Grow(len(key) + len(key)/groupSize)
	for i, r := range []rune(key) {
		if i > 0 && i%groupSize == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// RemoveSpaces strips every space from key.
func RemoveSpaces(key string) string {
	return strings.ReplaceAll(key, " ", "")
}

// FormatKeyAndPassphrase renders an access key for display: uppercase,
// grouped by AddSpaces, followed by "-passphrase" when one is present.
func FormatKeyAndPassphrase(key string, passphrase Passphrase) string {
	return strings.ToUpper(AddSpaces(key)) + passphrase.suffix()
}
