// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package keynos

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// SeedSize is the length of a BIP39 seed in bytes (512 bits).
const SeedSize = 64

// EntropyInput returns the string that is hashed into BIP39 entropy: the
// access key lowercased with spaces removed, followed by "-passphrase" when a
// passphrase is present. Formatting differences in the key (case, grouping)
// therefore never change the derived seed.
func EntropyInput(key string, passphrase Passphrase) string {
	return strings.ToLower(RemoveSpaces(key)) + passphrase.suffix()
}

// Mnemonic returns the 24-word BIP39 sentence for an access key and
// passphrase. The sentence is the SHA256 of EntropyInput encoded with the
// English word list; it can be written down as a paper backup of the seed.
func Mnemonic(key string, passphrase Passphrase) (string, error) {
	entropy := sha256.Sum256([]byte(EntropyInput(key, passphrase)))

	words, err := bip39.NewMnemonic(entropy[:])
	if err != nil {
		return "", fmt.Errorf("could not create a mnemonic set of words: %w", err)
	}
	return words, nil
}

// GenerateSeed derives the 64-byte seed for an access key and passphrase.
//
// The key and passphrase are normalized by EntropyInput, hashed with SHA256
// into 256 bits of entropy, encoded as a 24-word mnemonic and expanded with
// the standard BIP39 PBKDF2-SHA512 mnemonic-to-seed algorithm. No BIP39
// passphrase is used at that last step; the passphrase has already been mixed
// into the entropy.
func GenerateSeed(key string, passphrase Passphrase) ([]byte, error) {
	mnemonic, err := Mnemonic(key, passphrase)
	if err != nil {
		return nil, err
	}

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("could not derive seed: %w", err)
	}
	return seed, nil
}
