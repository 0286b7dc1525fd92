// Package main is the ReviverImagem terminal client.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
