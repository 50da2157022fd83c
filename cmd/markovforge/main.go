// Command markovforge generates password candidates from a positional
// Markov model and tests them against a dictionary index, dispatching
// generate/match work across one or more compute devices.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/markovforge/markovforge/errext"
)

func main() {
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	gs := newGlobalState()
	root := newRootCommand(gs)

	for _, a := range os.Args[1:] {
		if a == "-h" || a == "--help" {
			root.Help() //nolint:errcheck
			return 1
		}
	}

	err := root.Execute()
	if err == nil {
		return 0
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}

	fmt.Fprintln(gs.stderr, err)
	var withCode errext.HasExitCode
	if errors.As(err, &withCode) {
		return withCode.ExitCode()
	}
	return 2
}
