package main

import (
	"context"
	"fmt"
	"os"

	"github.com/erazemk/najdeno/internal/cli"
)

// Set by the linker.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	root := cli.NewRootCommand(os.Stdout, cli.BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	})
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
