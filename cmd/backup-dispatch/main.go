// backup-dispatch publishes one Pub/Sub backup job per enabled Google Drive
// account. Intended to run as a scheduled job; the push subscription delivers
// each job to the server's /pubsub/backup endpoint.
//
// Usage (from backend directory):
//   DB_USER=... PUBSUB_PROJECT_ID=... PUBSUB_BACKUP_TOPIC=... go run ./cmd/backup-dispatch
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/webshop_backend/config"
	"bitbucket.org/mmdatafocus/webshop_backend/google"
	"github.com/google/uuid"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	dispatched, err := google.DispatchBackups(ctx, db, uuid.NewString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "dispatch failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("dispatched %d backup job(s)\n", dispatched)
}
