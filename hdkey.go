// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package keynos

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

// PathDepth is the number of hardened levels below the parent key.
const PathDepth = 3

// hardenedMarker separates segments once apostrophes have been normalized.
const hardenedMarker = "h/"

// DerivationPath is a fixed three-level hardened path. The indices are stored
// without the hardened offset; DerivePath adds it.
//
// The levels are conventionally use case, index and revocation counter, but
// this package does not assign them any meaning.
type DerivationPath [PathDepth]uint32

// String returns the canonical form, e.g. "128h/0h/0h/".
func (p DerivationPath) String() string {
	var b strings.Builder
	for _, idx := range p {
		b.WriteString(strconv.FormatUint(uint64(idx), 10))
		b.WriteString(hardenedMarker)
	}
	return b.String()
}

// ExtendedKeyPair holds the base58 serializations of one node of the tree.
// XPrv carries everything XPub does plus the private key.
type ExtendedKeyPair struct {
	XPub string `json:"xpub"`
	XPrv string `json:"xprv"`
}

// GenerateRootXPrv turns a 64-byte seed into a BIP32 master key and returns
// its base58 serialization, which starts with "xprv".
//
// A seed of any other length fails with a *SeedFormatError.
func GenerateRootXPrv(seed []byte) (string, error) {
	if len(seed) != SeedSize {
		return "", &SeedFormatError{Len: len(seed)}
	}

	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return "", fmt.Errorf("could not create master key: %w", err)
	}
	return master.String(), nil
}

// ParseDerivationPath parses a three-level hardened path.
//
// Accepted forms include "128h/0h/0h/", "128h/0h/0h", "m/128'/0'/0'/" and
// any mix of ' and h markers. Every segment must be hardened and a decimal
// integer below 2^31. Paths with fewer or more than three levels are rejected
// with a *DerivationPathError.
func ParseDerivationPath(path string) (DerivationPath, error) {
	var dp DerivationPath

	normalized := strings.ReplaceAll(path, "'", "h")
	normalized = strings.TrimPrefix(normalized, "m/")
	if !strings.HasSuffix(normalized, "/") {
		normalized += "/"
	}

	segments := strings.Split(normalized, hardenedMarker)
	if len(segments) < PathDepth+1 {
		return dp, &DerivationPathError{Path: path, Reason: "path must contain 3 sub-paths"}
	}
	for _, extra := range segments[PathDepth:] {
		if extra != "" {
			return dp, &DerivationPathError{Path: path, Reason: "path must contain 3 sub-paths"}
		}
	}

	for i, seg := range segments[:PathDepth] {
		if seg == "" {
			return dp, &DerivationPathError{Path: path, Reason: "path must contain 3 sub-paths"}
		}
		// bitSize 31 keeps the index below hdkeychain.HardenedKeyStart.
		idx, err := strconv.ParseUint(seg, 10, 31)
		if err != nil {
			return dp, &DerivationPathError{
				Path:   path,
				Reason: fmt.Sprintf("segment %d (%q) is not a valid index", i, seg),
				Err:    err,
			}
		}
		dp[i] = uint32(idx)
	}

	return dp, nil
}

// DeriveHardened3x parses path and derives the three hardened children it
// names from parentXprv, which must be a base58 private extended key.
//
// A malformed path fails with *DerivationPathError; a parent key that cannot
// be decoded or has no private component fails with *KeyExtractionError.
func DeriveHardened3x(parentXprv, path string) (ExtendedKeyPair, error) {
	dp, err := ParseDerivationPath(path)
	if err != nil {
		return ExtendedKeyPair{}, err
	}
	return DerivePath(parentXprv, dp)
}

// DerivePath derives the hardened children named by path from parentXprv.
func DerivePath(parentXprv string, path DerivationPath) (ExtendedKeyPair, error) {
	parent, err := hdkeychain.NewKeyFromString(parentXprv)
	if err != nil {
		return ExtendedKeyPair{}, &KeyExtractionError{Reason: "could not decode parent key", Err: err}
	}
	if !parent.IsPrivate() {
		// Hardened children cannot be derived from public keys.
		return ExtendedKeyPair{}, &KeyExtractionError{Reason: "parent key is public-only", Err: ErrNoPrivateKey}
	}

	child := parent
	for _, idx := range path {
		child, err = child.Derive(hdkeychain.HardenedKeyStart + idx)
		if err != nil {
			return ExtendedKeyPair{}, fmt.Errorf("could not derive hardened child %dh: %w", idx, err)
		}
	}

	pub, err := child.Neuter()
	if err != nil {
		return ExtendedKeyPair{}, fmt.Errorf("could not neuter child key: %w", err)
	}

	return ExtendedKeyPair{
		XPub: pub.String(),
		XPrv: child.String(),
	}, nil
}
