package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/modernforum/forum/internal/cli"
)

// @title        Modern Forum API
// @version      1.0
// @description  JSON endpoints of the forum. Authenticated calls need the forum.sid session cookie.
// @BasePath     /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
