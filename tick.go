package main

import (
	"database/sql"
	"log"
	"time"
)

// startSessionSweep prunes expired sessions on a fixed interval.
func startSessionSweep(db *sql.DB) {
	ticker := time.NewTicker(10 * time.Minute)

	go func() {
		for range ticker.C {
			result, err := db.Exec(`
				DELETE FROM sessions
				WHERE expires_at < NOW()
			`)
			if err != nil {
				log.Println("Session sweep failed:", err)
				continue
			}
			if removed, err := result.RowsAffected(); err == nil && removed > 0 {
				log.Println("Session sweep: removed", removed, "expired sessions")
			}
		}
	}()
}
