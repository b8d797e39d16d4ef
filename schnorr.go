// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package keynos

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// SignatureSize is the length of a BIP340 Schnorr signature.
const SignatureSize = schnorr.SignatureSize

// SchnorrSign hashes message with SHA256 and signs the digest with privkey
// (32-byte hex scalar) using BIP340 Schnorr. The 64-byte signature is
// returned as hex.
func SchnorrSign(message, privkey string) (string, error) {
	priv, err := parsePrivKey(privkey)
	if err != nil {
		return "", &SignatureError{Reason: "invalid private key", Err: err}
	}
	defer priv.Zero()

	digest := sha256.Sum256([]byte(message))
	sig, err := schnorr.Sign(priv, digest[:])
	if err != nil {
		return "", &SignatureError{Reason: "could not sign", Err: err}
	}
	return hex.EncodeToString(sig.Serialize()), nil
}

// SchnorrVerify checks that signature is a valid BIP340 signature of the
// SHA256 digest of message under pubkey.
//
// A signature that does not verify yields (false, nil). A *SignatureError is
// returned only for malformed input: bad hex, a signature that is not 64
// bytes, or a public key that is neither a 32-byte x-only key nor a 33-byte
// compressed key, or is not a point on the curve.
func SchnorrVerify(message, signature, pubkey string) (bool, error) {
	sigBytes, err := hex.DecodeString(signature)
	if err != nil {
		return false, &SignatureError{Reason: "invalid signature hex", Err: err}
	}
	if len(sigBytes) != SignatureSize {
		return false, &SignatureError{
			Reason: fmt.Sprintf("signature must be %d bytes, got %d", SignatureSize, len(sigBytes)),
		}
	}

	pub, err := parseSchnorrPubKey(pubkey)
	if err != nil {
		return false, err
	}

	// A correctly sized signature whose r or s is out of range cannot be
	// valid for any message; it is a mismatch, not malformed input.
	sig, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		return false, nil
	}

	digest := sha256.Sum256([]byte(message))
	return sig.Verify(digest[:], pub), nil
}

// parseSchnorrPubKey accepts the x-only form produced by ExtractECDHKeys and
// also the 33-byte compressed form, whose parity byte BIP340 ignores.
func parseSchnorrPubKey(pubkey string) (*btcec.PublicKey, error) {
	b, err := hex.DecodeString(pubkey)
	if err != nil {
		return nil, &SignatureError{Reason: "invalid public key hex", Err: err}
	}

	switch len(b) {
	case XOnlyPubKeySize:
	case btcec.PubKeyBytesLenCompressed:
		if b[0] != secp256k1.PubKeyFormatCompressedEven && b[0] != secp256k1.PubKeyFormatCompressedOdd {
			return nil, &SignatureError{Reason: fmt.Sprintf("invalid compressed public key prefix 0x%02x", b[0])}
		}
		b = b[1:]
	default:
		return nil, &SignatureError{
			Reason: fmt.Sprintf("public key must be %d or %d bytes, got %d",
				XOnlyPubKeySize, btcec.PubKeyBytesLenCompressed, len(b)),
		}
	}

	pub, err := schnorr.ParsePubKey(b)
	if err != nil {
		return nil, &SignatureError{Reason: "invalid public key", Err: err}
	}
	return pub, nil
}
