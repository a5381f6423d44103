package main

import (
	"fmt"
	"os"

	"github.com/polidex/cli/config"
	"github.com/polidex/cli/internal/session"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	sess := session.NewFileStore(config.TokenPath())

	if err := newCLIApp(cfg, sess).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
