package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"invoizo/internal/adapters/cli"
	"invoizo/internal/adapters/repl"
	"invoizo/internal/bootstrap"
	"invoizo/internal/config"
	"invoizo/internal/logging"
)

// With arguments it runs one CLI command; without, the interactive console.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	// Console output is for the user; only warnings and errors get logged.
	logger := logging.New("warn", "text")
	logger.SetOutput(os.Stderr)

	ctx := context.Background()
	rt, err := bootstrap.Open(ctx, cfg, logger, false)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer rt.Close()

	if len(os.Args) > 1 {
		cli.Run(ctx, rt.Service, os.Args[1:])
		return
	}
	repl.Run(ctx, rt.Service, bufio.NewReader(os.Stdin))
}
