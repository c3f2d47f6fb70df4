package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"example.com/healthingest/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		log.Printf("healthload: %v", err)
		stop()
		os.Exit(1)
	}
}
