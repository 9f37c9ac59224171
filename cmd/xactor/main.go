// Command xactor serves counter services over HTTP and runs a demo of the
// shared and per-context service registries.
//
//	xactor serve -c xactor.yaml
//	xactor demo
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
