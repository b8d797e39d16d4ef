// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package keynos

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"pgregory.net/rapid"
)

var upperHex = regexp.MustCompile(`^[0-9A-F]{32}$`)

// rapidKeyPair draws a keypair. The drawn bytes are hashed so the scalar is
// valid with overwhelming probability.
func rapidKeyPair(t *rapid.T, label string) ECDHKeyPair {
	raw := rapid.SliceOfN(rapid.Byte(), 1, 64).Draw(t, label)
	scalar := sha256.Sum256(raw)
	priv, pub := btcec.PrivKeyFromBytes(scalar[:])
	return ECDHKeyPair{
		PrivKey: hex.EncodeToString(priv.Serialize()),
		PubKey:  hex.EncodeToString(schnorr.SerializePubKey(pub)),
	}
}

// TestGenerateAccessKey_Property checks any input gives a stable 32 character uppercase key
func TestGenerateAccessKey_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		random := rapid.SliceOfN(rapid.Byte(), RecommendedEntropyLen, 2*RecommendedEntropyLen).Draw(t, "random")

		key := GenerateAccessKey(random)
		if !upperHex.MatchString(key) {
			t.Fatalf("key %q is not 32 uppercase hex characters", key)
		}
		if again := GenerateAccessKey(random); again != key {
			t.Fatalf("same input gave %q then %q", key, again)
		}
	})
}

// TestSpaces_RoundTrip checks RemoveSpaces undoes AddSpaces and AddSpaces is idempotent
func TestSpaces_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		key := rapid.StringMatching(`[0-9A-Za-z]{0,64}`).Draw(t, "key")

		spaced := AddSpaces(key)
		if got := RemoveSpaces(spaced); got != key {
			t.Fatalf("RemoveSpaces(AddSpaces(%q)) = %q", key, got)
		}
		if again := AddSpaces(spaced); again != spaced {
			t.Fatalf("AddSpaces is not idempotent: %q then %q", spaced, again)
		}
	})
}

// TestParseDerivationPath_Property checks every spelling of a valid path parses to the same indices
func TestParseDerivationPath_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var want DerivationPath
		for i := range want {
			want[i] = rapid.Uint32Range(0, 1<<31-1).Draw(t, fmt.Sprintf("index%d", i))
		}

		prefix := rapid.SampledFrom([]string{"", "m/"}).Draw(t, "prefix")
		suffix := rapid.SampledFrom([]string{"", "/"}).Draw(t, "suffix")
		path := prefix
		for i, idx := range want {
			if i > 0 {
				path += "/"
			}
			path += fmt.Sprintf("%d%s", idx, rapid.SampledFrom([]string{"h", "'"}).Draw(t, fmt.Sprintf("marker%d", i)))
		}
		path += suffix

		got, err := ParseDerivationPath(path)
		if err != nil {
			t.Fatalf("ParseDerivationPath(%q) error: %v", path, err)
		}
		if got != want {
			t.Fatalf("ParseDerivationPath(%q) = %v, want %v", path, got, want)
		}

		canonical, err := ParseDerivationPath(got.String())
		if err != nil || canonical != want {
			t.Fatalf("canonical form %q does not parse back: %v", got.String(), err)
		}
	})
}

// TestComputeSharedSecret_Property checks both parties always compute the same secret
func TestComputeSharedSecret_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapidKeyPair(t, "a")
		b := rapidKeyPair(t, "b")

		ab, err := ComputeSharedSecret(ECDHKeyPair{PrivKey: a.PrivKey, PubKey: b.PubKey})
		if err != nil {
			t.Fatalf("ComputeSharedSecret(a, B) error: %v", err)
		}
		ba, err := ComputeSharedSecret(ECDHKeyPair{PrivKey: b.PrivKey, PubKey: a.PubKey})
		if err != nil {
			t.Fatalf("ComputeSharedSecret(b, A) error: %v", err)
		}
		if ab != ba {
			t.Fatalf("secrets differ: %s != %s", ab, ba)
		}
	})
}

// TestSchnorr_Property checks signatures verify for their message and fail for any other
func TestSchnorr_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		kp := rapidKeyPair(t, "key")
		message := rapid.String().Draw(t, "message")

		sig, err := SchnorrSign(message, kp.PrivKey)
		if err != nil {
			t.Fatalf("SchnorrSign() error: %v", err)
		}

		ok, err := SchnorrVerify(message, sig, kp.PubKey)
		if err != nil || !ok {
			t.Fatalf("SchnorrVerify() = %v, %v; want true, nil", ok, err)
		}

		other := rapid.String().Filter(func(s string) bool { return s != message }).Draw(t, "other")
		ok, err = SchnorrVerify(other, sig, kp.PubKey)
		if err != nil || ok {
			t.Fatalf("SchnorrVerify(other message) = %v, %v; want false, nil", ok, err)
		}
	})
}
