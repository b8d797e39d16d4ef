// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package keynos derives a deterministic hierarchy of secp256k1 key material
// from a single user-held secret, the access key.
//
// The pipeline runs strictly in one direction:
//
//	random bytes -> access key -> seed -> root xprv -> 3 hardened children
//	             -> ECDH keypair -> shared secret / Schnorr signatures
//
// The access key is a 16-byte value shown to the user as 32 uppercase hex
// characters. Combined with an optional passphrase it is hashed into BIP39
// entropy, stretched into a 64-byte seed and turned into a BIP32 master key.
// Every function in this package is a pure function of its inputs and is safe
// for concurrent use.
package keynos

// Passphrase is an optional secret appended to the access key before it is
// hashed into seed entropy. The zero value is NoPassphrase.
//
// An absent passphrase and a present but empty passphrase are different
// inputs: the latter still contributes the "-" separator, so it yields a
// different seed.
type Passphrase struct {
	value string
	set   bool
}

// NoPassphrase is the absent passphrase.
var NoPassphrase = Passphrase{}

// NewPassphrase returns a present passphrase with the given value.
func NewPassphrase(value string) Passphrase {
	return Passphrase{value: value, set: true}
}

// Value returns the passphrase and whether one was supplied.
func (p Passphrase) Value() (string, bool) {
	return p.value, p.set
}

// suffix is what gets appended to the access key: "-passphrase" or nothing.
func (p Passphrase) suffix() string {
	if !p.set {
		return ""
	}
	return "-" + p.value
}
