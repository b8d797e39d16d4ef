// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package keynos

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/tyler-smith/go-bip39"
)

// TestEntropyInput tests key normalization and passphrase suffixing
func TestEntropyInput(t *testing.T) {
	is := is.New(t)

	want := strings.ToLower(testAccessKey)
	is.Equal(EntropyInput(testAccessKey, NoPassphrase), want)
	is.Equal(EntropyInput(AddSpaces(testAccessKey), NoPassphrase), want)
	is.Equal(EntropyInput(testAccessKey, NewPassphrase("Pass")), want+"-Pass")
	is.Equal(EntropyInput(testAccessKey, NewPassphrase("")), want+"-")
}

// TestMnemonic_ValidTwentyFourWords tests the mnemonic is a valid 24-word
// BIP39 sentence
func TestMnemonic_ValidTwentyFourWords(t *testing.T) {
	is := is.New(t)

	mnemonic, err := Mnemonic(testAccessKey, NewPassphrase("pass"))
	is.NoErr(err)
	is.Equal(len(strings.Fields(mnemonic)), 24)
	is.True(bip39.IsMnemonicValid(mnemonic))
}

// TestGenerateSeed_Length tests the seed is 64 bytes
func TestGenerateSeed_Length(t *testing.T) {
	is := is.New(t)

	seed, err := GenerateSeed(testAccessKey, NoPassphrase)
	is.NoErr(err)
	is.Equal(len(seed), SeedSize)
}

// TestGenerateSeed_Deterministic verifies that the same key and passphrase
// always produce the same seed
func TestGenerateSeed_Deterministic(t *testing.T) {
	is := is.New(t)

	seed1, err := GenerateSeed(testAccessKey, NewPassphrase("pass"))
	is.NoErr(err)

	seed2, err := GenerateSeed(testAccessKey, NewPassphrase("pass"))
	is.NoErr(err)

	seed3, err := GenerateSeed(testAccessKey, NewPassphrase("pass"))
	is.NoErr(err)

	is.True(bytes.Equal(seed1, seed2))
	is.True(bytes.Equal(seed2, seed3))
}

// TestGenerateSeed_FormattingIgnored verifies that spacing and case of the
// access key do not change the seed
func TestGenerateSeed_FormattingIgnored(t *testing.T) {
	is := is.New(t)

	plain, err := GenerateSeed(testAccessKey, NewPassphrase("pass"))
	is.NoErr(err)

	formatted, err := GenerateSeed(strings.ToLower(AddSpaces(testAccessKey)), NewPassphrase("pass"))
	is.NoErr(err)

	is.True(bytes.Equal(plain, formatted))
}

// TestGenerateSeed_DifferentInputsProduceDifferentResults verifies that
// different keys or passphrases produce different seeds
func TestGenerateSeed_DifferentInputsProduceDifferentResults(t *testing.T) {
	is := is.New(t)

	none, err := GenerateSeed(testAccessKey, NoPassphrase)
	is.NoErr(err)

	empty, err := GenerateSeed(testAccessKey, NewPassphrase(""))
	is.NoErr(err)

	pass1, err := GenerateSeed(testAccessKey, NewPassphrase("passphrase1"))
	is.NoErr(err)

	pass2, err := GenerateSeed(testAccessKey, NewPassphrase("passphrase2"))
	is.NoErr(err)

	otherKey, err := GenerateSeed("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF", NoPassphrase)
	is.NoErr(err)

	is.True(!bytes.Equal(none, empty))
	is.True(!bytes.Equal(pass1, pass2))
	is.True(!bytes.Equal(none, pass1))
	is.True(!bytes.Equal(none, otherKey))
}

// TestGenerateSeed_MatchesMnemonic checks the seed is the standard BIP39 seed
// of the mnemonic with no BIP39 passphrase
func TestGenerateSeed_MatchesMnemonic(t *testing.T) {
	is := is.New(t)

	mnemonic, err := Mnemonic(testAccessKey, NewPassphrase("pass"))
	is.NoErr(err)

	seed, err := GenerateSeed(testAccessKey, NewPassphrase("pass"))
	is.NoErr(err)

	is.True(bytes.Equal(seed, bip39.NewSeed(mnemonic, "")))
}
