// Command cachearchive packs a directory tree into a reproducible tar+zstd
// archive and restores one back onto disk.
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
