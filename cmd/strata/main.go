// Command strata composes interleaved table schemas and compiles queries
// against them.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/strata/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	// Commands report their own failures; anything else came from cobra
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
