package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"trivia-quiz-service/internal/cli"
)

func main() {
	// cancelled on Ctrl-C or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
