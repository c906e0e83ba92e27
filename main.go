package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/hashrig/hashrig/parts"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	log.Println("App environment:", env)

	catalog := parts.DefaultCatalog()
	if path := os.Getenv("PARTS_CONFIG"); path != "" {
		loaded, err := parts.LoadCatalog(path)
		if err != nil {
			log.Fatal("failed to load part catalog:", err)
		}
		catalog = loaded
		log.Println("Loaded part catalog from", path)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatal("failed to open database:", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatal("failed to ping database:", err)
	}
	log.Println("Connected to PostgreSQL")

	if err := ensureSchema(db); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}

	startSessionSweep(db)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthHandler)
	mux.HandleFunc("/auth/register", registerHandler(db))
	mux.HandleFunc("/auth/login", loginHandler(db))
	mux.HandleFunc("/game/load", gameLoadHandler(db, catalog))
	mux.HandleFunc("/game/save", gameSaveHandler(db, catalog))
	mux.HandleFunc("/game/leaderboard", leaderboardHandler(db, catalog))
	mux.HandleFunc("/telemetry", telemetryHandler(db))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("Listening on :" + port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal(err)
	}
}
