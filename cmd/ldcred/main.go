// Command ldcred issues and verifies Linked Data credentials and presentations with did:key
// identifiers held in a local key store.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
