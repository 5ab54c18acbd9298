// main holds the entry logic for the dora CLI.
package main

import (
	"fmt"
	"os"

	"github.com/aeswibon/dora/cmd"
	"github.com/aeswibon/dora/internal/iostore"
)

// main is the entry point for the dora CLI. Stores are closed after the
// command finishes, whether it succeeded or not.
func main() {
	err := cmd.Execute()
	iostore.CloseStores()
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
