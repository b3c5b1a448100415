package main

import (
	"os"

	"ai_detective/src/cli"
)

// Set by ldflags at release time
var (
	version = "dev"
	commit  = "none"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	os.Exit(cli.Execute(cli.NewRootCommand()))
}
