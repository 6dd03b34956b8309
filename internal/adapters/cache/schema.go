package cache

import (
	"database/sql"
	"fmt"
)

// InitSchema creates the travel-time cache table when it does not exist yet.
// Safe to run on every startup.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS travel_time_cache (
		origin           text    NOT NULL,
		destination      text    NOT NULL,
		duration_seconds integer NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`)
	if err != nil {
		return fmt.Errorf("init schema: create travel_time_cache table: %w", err)
	}
	return nil
}
