// Package main is the entry point for the userhub service.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Version information set at build time.
var version = "dev"

func main() {
	loadLocalEnv()

	cmd := NewRootCmd()
	cmd.Version = version
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found; relying on existing environment")
	}
}
