package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/complex-gh/keynos"
	"github.com/matryer/is"
)

const testKey = "0A1B 2C3D 4E5F 6071 8293 A4B5 C6D7 E8F9"

// TestDeriveOutput_Blocks checks the default output carries the extended and
// ECDH blocks and nothing else
func TestDeriveOutput_Blocks(t *testing.T) {
	is := is.New(t)
	showRoot, showMnemonic, showNostr = false, false, false

	var buf bytes.Buffer
	is.NoErr(deriveOutput(&buf, testKey, keynos.NoPassphrase, keynos.DefaultPath))

	out := buf.String()
	is.True(strings.Contains(out, "[extended keys at 128h/0h/0h/]"))
	is.True(strings.Contains(out, "[ecdh keys]"))
	is.True(strings.Contains(out, "(xprv)"))
	is.True(!strings.Contains(out, "[root extended private key]"))
	is.True(!strings.Contains(out, "[24 word mnemonic]"))
	is.True(!strings.Contains(out, "npub1"))

	id, err := keynos.DeriveIdentity(testKey, keynos.NoPassphrase, keynos.DefaultPath)
	is.NoErr(err)
	is.True(strings.Contains(out, id.ECDH.PubKey))
	is.True(strings.Contains(out, id.Extended.XPub))
}

// TestDeriveOutput_Optional checks --root, --mnemonic and --nostr add their blocks
func TestDeriveOutput_Optional(t *testing.T) {
	is := is.New(t)
	showRoot, showMnemonic, showNostr = true, true, true
	t.Cleanup(func() { showRoot, showMnemonic, showNostr = false, false, false })

	var buf bytes.Buffer
	is.NoErr(deriveOutput(&buf, testKey, keynos.NewPassphrase("pass"), "m/128'/0'/1'"))

	out := buf.String()
	is.True(strings.Contains(out, "[root extended private key]"))
	is.True(strings.Contains(out, "[24 word mnemonic]"))
	is.True(strings.Contains(out, "[nostr keys]"))
	is.True(strings.Contains(out, "npub1"))
	is.True(strings.Contains(out, "nsec1"))
}

// TestDeriveOutput_BadPath checks a bad path surfaces the typed error
func TestDeriveOutput_BadPath(t *testing.T) {
	is := is.New(t)

	var buf bytes.Buffer
	err := deriveOutput(&buf, testKey, keynos.NoPassphrase, "128h/0h")
	is.True(err != nil)
	is.True(strings.Contains(errorHint(err), "Paths look like"))
	is.Equal(buf.Len(), 0)
}

// TestNewAccessKey_File checks an entropy file gives the same key as the library
func TestNewAccessKey_File(t *testing.T) {
	is := is.New(t)

	data := bytes.Repeat([]byte("dice"), keynos.RecommendedEntropyLen/4)
	path := filepath.Join(t.TempDir(), "entropy")
	is.NoErr(os.WriteFile(path, data, 0o600))

	key, err := newAccessKey(path)
	is.NoErr(err)
	is.Equal(key, keynos.GenerateAccessKey(data))
}

// TestNewAccessKey_Random checks two generated keys differ
func TestNewAccessKey_Random(t *testing.T) {
	is := is.New(t)

	a, err := newAccessKey("")
	is.NoErr(err)
	b, err := newAccessKey("")
	is.NoErr(err)
	is.Equal(len(a), 2*keynos.AccessKeySize)
	is.True(a != b)
}

// TestNewAccessKey_MissingFile checks a missing entropy file is an error
func TestNewAccessKey_MissingFile(t *testing.T) {
	is := is.New(t)

	_, err := newAccessKey(filepath.Join(t.TempDir(), "nope"))
	is.True(err != nil)
}

// TestReadLine checks the first line is trimmed and empty input is an error
func TestReadLine(t *testing.T) {
	is := is.New(t)

	line, err := readLine(strings.NewReader("  abc  \nsecond\n"))
	is.NoErr(err)
	is.Equal(line, "abc")

	_, err = readLine(strings.NewReader(""))
	is.True(err != nil)
}

// TestErrorHint checks hints are attached per error kind
func TestErrorHint(t *testing.T) {
	is := is.New(t)

	_, err := keynos.DerivePath("xpub", keynos.DerivationPath{})
	is.True(err != nil)
	is.True(strings.HasPrefix(errorHint(err), err.Error()))

	_, err = keynos.SchnorrVerify("m", "zz", "zz")
	is.True(strings.Contains(errorHint(err), "hex encoded"))

	plain := fmt.Errorf("boom")
	is.Equal(errorHint(plain), "boom")
}
