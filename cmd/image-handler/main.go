package main

import (
	"context"
	"errors"
	"os"

	"github.com/fatih/color"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			color.New(color.FgRed).Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
