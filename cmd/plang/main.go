// Command plang is the Plang interpreter's command-line entry point.
package main

import (
	"fmt"
	"os"

	"github.com/plang-lang/plang/cmd/plang/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
