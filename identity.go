// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package keynos

// DefaultPath is the derivation path used when callers have no reason to pick
// another one.
const DefaultPath = "128h/0h/0h/"

// Identity is everything derived from one access key, passphrase and path.
type Identity struct {
	// RootXPrv is the master extended private key.
	RootXPrv string `json:"root_xprv"`

	// Path is the canonical form of the derivation path used.
	Path string `json:"path"`

	// Extended is the extended keypair at Path.
	Extended ExtendedKeyPair `json:"extended"`

	// ECDH is the raw keypair extracted from Extended.
	ECDH ECDHKeyPair `json:"ecdh"`
}

// DeriveIdentity runs the whole pipeline for an access key: seed, root key,
// hardened path and ECDH keypair. It fails on the first stage that fails and
// returns that stage's error unchanged, so callers can still match it with
// errors.As.
func DeriveIdentity(key string, passphrase Passphrase, path string) (*Identity, error) {
	// Parse first; it is cheap compared to seed stretching.
	dp, err := ParseDerivationPath(path)
	if err != nil {
		return nil, err
	}

	seed, err := GenerateSeed(key, passphrase)
	if err != nil {
		return nil, err
	}

	root, err := GenerateRootXPrv(seed)
	if err != nil {
		return nil, err
	}

	extended, err := DerivePath(root, dp)
	if err != nil {
		return nil, err
	}

	ecdh, err := ExtractECDHKeys(extended)
	if err != nil {
		return nil, err
	}

	return &Identity{
		RootXPrv: root,
		Path:     dp.String(),
		Extended: extended,
		ECDH:     ecdh,
	}, nil
}
