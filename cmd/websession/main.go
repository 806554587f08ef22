package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := withContext(newApp(os.Stdout, os.Stderr), ctx)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "websession: %v\n", err)
		os.Exit(1)
	}
}
