// Package main is the userstable command line client.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/chybatronik/goUsersTable/internal/cli"
)

// Version is set during build
var Version = "dev"

func main() {
	// optional, same .env as the server
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := cli.NewRootCmd(Version).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
