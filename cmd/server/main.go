// Package main implements the entry point for the user API server,
// which manages user accounts and their owned credentials.
package main

import (
	"context"
	"log"
	"os"
)

// main is the entry point for the user-api server. It initializes
// configuration, logging, the database, and the service graph, then runs
// the HTTP server until interrupted.
func main() {
	app, err := newApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.run(context.Background()); err != nil {
		app.logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
