// derive_xpub.go prints the extended public key and fingerprint for an
// extended private key file.
// Usage: go run scripts/derive_xpub.go <keyfile>
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/keysmith-security/keysmith/internal/hdkey"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: derive_xpub <keyfile>")
		os.Exit(1)
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	key, err := hdkey.ParseExtendedKey(strings.TrimSpace(string(data)))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer key.Zero()
	fp := key.Fingerprint()
	fmt.Printf("xpub=%s\n", key.Neuter().String())
	fmt.Printf("fingerprint=%x\n", fp)
}
