package main

import (
	"fmt"
	"os"

	"github.com/aussiebroadwan/headcount/cmd/login/cli"
)

// Set via -ldflags at build time
var (
	version = ""
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := cli.Execute(version, commit, date); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
