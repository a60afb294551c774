package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Connect opens the run-store connection pool. Orchestrator runs are long
// lived and burst writes at phase resolution (order sets, messages, diary
// entries land together), so pool limits come from configuration rather than
// driver defaults.
func Connect(databaseURL string, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping run store: %w", err)
	}
	return db, nil
}
