// Satchel - Offline-First Course Companion
//
// A CLI client that keeps courses, quizzes and conversations usable
// without a network connection and reconciles queued actions with the
// server when connectivity returns.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/satchelhq/satchel/internal/cli"
	"github.com/satchelhq/satchel/internal/config"
	"github.com/satchelhq/satchel/internal/log"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}

	if err := log.Init(config.LogDir(cfg)); err != nil {
		os.Exit(1)
	}
	defer func() { _ = log.Close() }()

	if err := cli.Execute(ctx); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
