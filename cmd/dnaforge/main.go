// Package main generates a combinatorial art edition from a project file.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	generatecmd "github.com/louisbranch/dnaforge/internal/cmd/generate"
	"github.com/louisbranch/dnaforge/internal/platform/config"
)

func main() {
	cfg, err := generatecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := generatecmd.Run(ctx, cfg, os.Stdout); err != nil {
		stop()
		config.ExitErr(err)
	}
}
