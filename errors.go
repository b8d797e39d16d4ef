// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package keynos

import (
	"errors"
	"fmt"
)

// ErrNoPrivateKey is returned when an operation needs a private extended key
// but was handed a public-only (neutered) one.
var ErrNoPrivateKey = errors.New("extended key has no private component")

// DerivationPathError reports a derivation path that could not be parsed.
type DerivationPathError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DerivationPathError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid derivation path %q: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid derivation path %q: %s", e.Path, e.Reason)
}

func (e *DerivationPathError) Unwrap() error { return e.Err }

// SeedFormatError reports a seed of the wrong length.
type SeedFormatError struct {
	Len int
}

func (e *SeedFormatError) Error() string {
	return fmt.Sprintf("seed must be %d bytes, got %d", SeedSize, e.Len)
}

// KeyExtractionError reports malformed key material, or an extended key that
// lacks the private component an operation needs.
type KeyExtractionError struct {
	Reason string
	Err    error
}

func (e *KeyExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not extract key: %s: %v", e.Reason, e.Err)
	}
	return "could not extract key: " + e.Reason
}

func (e *KeyExtractionError) Unwrap() error { return e.Err }

// SignatureError reports malformed signature or key material passed to
// SchnorrSign or SchnorrVerify. A well-formed signature that simply does not
// match is not an error.
type SignatureError struct {
	Reason string
	Err    error
}

func (e *SignatureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schnorr: %s: %v", e.Reason, e.Err)
	}
	return "schnorr: " + e.Reason
}

func (e *SignatureError) Unwrap() error { return e.Err }
