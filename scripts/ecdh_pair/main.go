// ecdh_pair derives two identities from two access keys and prints the ECDH
// shared secret as seen from each side, for testing.
//
// Usage:
//
//	go run ./scripts/ecdh_pair <access-key-a> <access-key-b> [path]
//
// Or with stdin (one access key per line):
//
//	printf "KEY A\nKEY B\n" | go run ./scripts/ecdh_pair
//
// Both lines of output must be identical.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/complex-gh/keynos"
)

func main() {
	var keys []string
	path := keynos.DefaultPath

	if len(os.Args) > 2 { //nolint:mnd
		keys = os.Args[1:3]
		if len(os.Args) > 3 { //nolint:mnd
			path = os.Args[3]
		}
	} else {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() && len(keys) < 2 {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				keys = append(keys, line)
			}
		}
	}

	if len(keys) != 2 { //nolint:mnd
		fmt.Fprintln(os.Stderr, "Usage: ecdh_pair <access-key-a> <access-key-b> [path]")
		fmt.Fprintln(os.Stderr, "   or: printf \"KEY A\\nKEY B\\n\" | ecdh_pair")
		os.Exit(1)
	}

	a, err := keynos.DeriveIdentity(keys[0], keynos.NoPassphrase, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	b, err := keynos.DeriveIdentity(keys[1], keynos.NoPassphrase, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ab, err := keynos.ComputeSharedSecret(keynos.ECDHKeyPair{PrivKey: a.ECDH.PrivKey, PubKey: b.ECDH.PubKey})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ba, err := keynos.ComputeSharedSecret(keynos.ECDHKeyPair{PrivKey: b.ECDH.PrivKey, PubKey: a.ECDH.PubKey})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(ab)
	fmt.Println(ba)
}
