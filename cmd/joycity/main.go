package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Arsen1987144/joycity-marketplace/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
