// unpublish-sweep reconciles the published flag of discontinued items with
// their stock and work-order state, in both directions.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/unpublish-sweep
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/webshop_backend/config"
	"bitbucket.org/mmdatafocus/webshop_backend/workflow"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	result, err := workflow.UnpublishSweep(ctx, db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sweep failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("sweep done: scanned=%d unpublished=%d republished=%d failed=%d\n",
		result.Scanned, result.Unpublished, result.Republished, result.Failed)
}
