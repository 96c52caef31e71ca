// Package main colors the token rings of the active scene's NPCs.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	entrypoint "github.com/louisbranch/ringcolor/internal/platform/cmd"
	"github.com/louisbranch/ringcolor/internal/platform/config"

	ringcolorcmd "github.com/louisbranch/ringcolor/internal/cmd/ringcolor"
)

func main() {
	cfg, err := ringcolorcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	log.SetPrefix(entrypoint.LogPrefix(entrypoint.ServiceRingColor))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ringcolorcmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		if ringcolorcmd.Notified(err) {
			config.Exit(1)
		}
		config.Exitf("Error: %v", err)
	}
}
