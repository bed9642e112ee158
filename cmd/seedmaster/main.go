// Package main is the entry point for the seedmaster CLI.
//
// seedmaster provisions a single master instance on DigitalOcean or Hetzner
// Cloud, waits until the provider reports it ready, ships the downstream
// configuration and launches the master environment over SSH.
//
// Commands: setup, render, validate, init, version.
//
// For detailed usage information, run:
//
//	seedmaster --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/seedmaster/cmd/seedmaster/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	commands.SetVersionInfo(version, commit, date)
	err := commands.Root().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
