// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package keynos

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/nbd-wtf/go-nostr/nip19"
)

const (
	// PrivKeySize is the length of a raw secp256k1 private scalar.
	PrivKeySize = 32

	// XOnlyPubKeySize is the length of a BIP340 x-only public key.
	XOnlyPubKeySize = schnorr.PubKeyBytesLen

	// SharedSecretSize is the length of an ECDH shared secret (an X coordinate).
	SharedSecretSize = 32
)

// ECDHKeyPair is a raw secp256k1 keypair, hex encoded. PubKey is the 32-byte
// x-only (BIP340) form of the public key.
type ECDHKeyPair struct {
	PrivKey string `json:"privkey"`
	PubKey  string `json:"pubkey"`
}

// ExtractECDHKeys pulls the raw private scalar out of keys.XPrv and computes
// its x-only Schnorr public key.
//
// keys.XPub is ignored. If XPrv is malformed or public-only, a
// *KeyExtractionError is returned; for public-only keys it wraps
// ErrNoPrivateKey.
func ExtractECDHKeys(keys ExtendedKeyPair) (ECDHKeyPair, error) {
	extended, err := hdkeychain.NewKeyFromString(keys.XPrv)
	if err != nil {
		return ECDHKeyPair{}, &KeyExtractionError{Reason: "could not decode extended key", Err: err}
	}

	priv, err := extended.ECPrivKey()
	if errors.Is(err, hdkeychain.ErrNotPrivExtKey) {
		return ECDHKeyPair{}, &KeyExtractionError{Reason: "extended key is public-only", Err: ErrNoPrivateKey}
	}
	if err != nil {
		return ECDHKeyPair{}, &KeyExtractionError{Reason: "could not read private key", Err: err}
	}

	return ECDHKeyPair{
		PrivKey: hex.EncodeToString(priv.Serialize()),
		PubKey:  hex.EncodeToString(schnorr.SerializePubKey(priv.PubKey())),
	}, nil
}

// ComputeSharedSecret performs ECDH between keys.PrivKey and keys.PubKey and
// returns the X coordinate of the resulting point as hex.
//
// keys.PubKey is the counterparty's public key. A 32-byte x-only key is read
// as the point with even Y (prefix 0x02); a 33-byte compressed key is used as
// is. Because only X is kept, the parity choice does not affect the result
// and ComputeSharedSecret({A.priv, B.pub}) equals
// ComputeSharedSecret({B.priv, A.pub}).
func ComputeSharedSecret(keys ECDHKeyPair) (string, error) {
	priv, err := parsePrivKey(keys.PrivKey)
	if err != nil {
		return "", &KeyExtractionError{Reason: "invalid private key", Err: err}
	}
	defer priv.Zero()

	pubBytes, err := hex.DecodeString(keys.PubKey)
	if err != nil {
		return "", &KeyExtractionError{Reason: "invalid public key hex", Err: err}
	}
	if len(pubBytes) == XOnlyPubKeySize {
		pubBytes = append([]byte{secp256k1.PubKeyFormatCompressedEven}, pubBytes...)
	}
	if len(pubBytes) != secp256k1.PubKeyBytesLenCompressed {
		return "", &KeyExtractionError{
			Reason: fmt.Sprintf("public key must be %d or %d bytes, got %d",
				XOnlyPubKeySize, secp256k1.PubKeyBytesLenCompressed, len(pubBytes)),
		}
	}

	pub, err := secp256k1.ParsePubKey(pubBytes)
	if err != nil {
		return "", &KeyExtractionError{Reason: "invalid public key", Err: err}
	}

	return hex.EncodeToString(secp256k1.GenerateSharedSecret(priv, pub)), nil
}

// Nostr encodes the keypair as NIP-19 npub/nsec strings. The x-only public key
// is exactly a nostr public key, so a derived identity can be used directly
// as a nostr account.
func (k ECDHKeyPair) Nostr() (npub string, nsec string, err error) {
	npub, err = nip19.EncodePublicKey(k.PubKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode public key: %w", err)
	}

	nsec, err = nip19.EncodePrivateKey(k.PrivKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode private key: %w", err)
	}

	return npub, nsec, nil
}

// parsePrivKey decodes a hex private scalar, rejecting zero and values that
// are not below the group order.
func parsePrivKey(privHex string) (*secp256k1.PrivateKey, error) {
	b, err := hex.DecodeString(privHex)
	if err != nil {
		return nil, fmt.Errorf("could not decode hex: %w", err)
	}
	if len(b) != PrivKeySize {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", PrivKeySize, len(b))
	}

	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(b); overflow {
		return nil, errors.New("private key is not below the group order")
	}
	if scalar.IsZero() {
		return nil, errors.New("private key is zero")
	}
	return secp256k1.NewPrivateKey(&scalar), nil
}
