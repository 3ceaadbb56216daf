package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/chandra197/tpo-attendance-api/pkg/config"
	"github.com/chandra197/tpo-attendance-api/pkg/database"
)

// Removes duplicate attendance rows left behind by the legacy writer, which
// inserted a fresh row on every resubmission. For each (student_id, session_id)
// pair the most recently updated row wins. Run this once before applying the
// unique constraint on (student_id, session_id).
func main() {
	var (
		dryRun  bool
		timeout time.Duration
	)
	flag.BoolVar(&dryRun, "dry-run", false, "Report duplicates without deleting")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Overall execution timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	const countQuery = `SELECT COUNT(*) FROM attendance a
        WHERE EXISTS (
            SELECT 1 FROM attendance b
            WHERE b.student_id = a.student_id AND b.session_id = a.session_id
            AND (b.updated_at > a.updated_at OR (b.updated_at = a.updated_at AND b.id > a.id))
        )`
	var duplicates int
	if err := db.GetContext(ctx, &duplicates, countQuery); err != nil {
		log.Fatalf("failed to count duplicates: %v", err)
	}
	log.Printf("found %d duplicate attendance rows", duplicates)

	if dryRun || duplicates == 0 {
		return
	}

	const deleteQuery = `DELETE FROM attendance a
        WHERE EXISTS (
            SELECT 1 FROM attendance b
            WHERE b.student_id = a.student_id AND b.session_id = a.session_id
            AND (b.updated_at > a.updated_at OR (b.updated_at = a.updated_at AND b.id > a.id))
        )`
	result, err := db.ExecContext(ctx, deleteQuery)
	if err != nil {
		log.Fatalf("failed to delete duplicates: %v", err)
	}
	deleted, _ := result.RowsAffected()
	log.Printf("deleted %d duplicate attendance rows", deleted)
}
