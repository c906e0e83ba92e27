package main

import (
	"database/sql"
	"encoding/json"
	"net/http"
)

type TelemetryEventRequest struct {
	EventType string          `json:"eventType"`
	Payload   json.RawMessage `json:"payload"`
}

func telemetryHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !featureFlags.Telemetry {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		var req TelemetryEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.EventType == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		account, _ := getBearerAccount(db, r)
		_, _ = db.Exec(`
			INSERT INTO player_telemetry (account_id, event_type, payload, created_at)
			VALUES ($1, $2, $3, NOW())
		`, nullableAccountID(account), req.EventType, req.Payload)

		w.WriteHeader(http.StatusNoContent)
	}
}

func nullableAccountID(account *Account) interface{} {
	if account == nil {
		return nil
	}
	return account.AccountID
}
