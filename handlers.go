package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/hashrig/hashrig/game"
	"github.com/hashrig/hashrig/parts"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserView struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

type AuthResponse struct {
	OK    bool      `json:"ok"`
	Error string    `json:"error,omitempty"`
	Token string    `json:"token,omitempty"`
	User  *UserView `json:"user,omitempty"`
}

type LoadResponse struct {
	OK        bool        `json:"ok"`
	Error     string      `json:"error,omitempty"`
	GameState *game.State `json:"gameState,omitempty"`
}

type SaveRequest struct {
	GameState game.State `json:"gameState"`
}

type SaveResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Version int64  `json:"version,omitempty"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func registerHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, AuthResponse{OK: false, Error: "INVALID_REQUEST"})
			return
		}

		account, err := createAccount(db, req.Username, req.Email, req.Password)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, AuthResponse{OK: false, Error: err.Error()})
			return
		}

		token, err := createSession(db, account.AccountID)
		if err != nil {
			log.Println("Failed to create session:", err)
			writeJSON(w, http.StatusInternalServerError, AuthResponse{OK: false, Error: "INTERNAL"})
			return
		}

		writeJSON(w, http.StatusOK, AuthResponse{
			OK:    true,
			Token: token,
			User:  &UserView{Username: account.Username, Email: account.Email},
		})
	}
}

func loginHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, AuthResponse{OK: false, Error: "INVALID_REQUEST"})
			return
		}

		account, err := authenticate(db, req.Username, req.Password)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, AuthResponse{OK: false, Error: err.Error()})
			return
		}

		token, err := createSession(db, account.AccountID)
		if err != nil {
			log.Println("Failed to create session:", err)
			writeJSON(w, http.StatusInternalServerError, AuthResponse{OK: false, Error: "INTERNAL"})
			return
		}

		writeJSON(w, http.StatusOK, AuthResponse{
			OK:    true,
			Token: token,
			User:  &UserView{Username: account.Username, Email: account.Email},
		})
	}
}

func gameLoadHandler(db *sql.DB, catalog parts.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := getBearerAccount(db, r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, LoadResponse{OK: false, Error: err.Error()})
			return
		}

		state, err := loadOrCreateGameState(db, account.AccountID, catalog)
		if err != nil {
			log.Println("Failed to load game state:", err)
			writeJSON(w, http.StatusInternalServerError, LoadResponse{OK: false, Error: "INTERNAL"})
			return
		}

		writeJSON(w, http.StatusOK, LoadResponse{OK: true, GameState: &state})
	}
}

func gameSaveHandler(db *sql.DB, catalog parts.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		account, err := getBearerAccount(db, r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, SaveResponse{OK: false, Error: err.Error()})
			return
		}

		expectedVersion, err := strconv.ParseInt(r.Header.Get("If-Match"), 10, 64)
		if err != nil || expectedVersion < 0 {
			writeJSON(w, http.StatusBadRequest, SaveResponse{OK: false, Error: "MISSING_IF_MATCH"})
			return
		}

		var req SaveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, SaveResponse{OK: false, Error: "INVALID_REQUEST"})
			return
		}
		incoming := req.GameState

		if err := game.Validate(catalog, incoming); err != nil {
			log.Printf("Rejected save for %s: %v (request %s)", account.Username, err, r.Header.Get("X-Request-ID"))
			writeJSON(w, http.StatusBadRequest, SaveResponse{OK: false, Error: "INVALID_STATE"})
			return
		}

		stored, found, err := loadGameState(db, account.AccountID)
		if err != nil {
			log.Println("Failed to load game state:", err)
			writeJSON(w, http.StatusInternalServerError, SaveResponse{OK: false, Error: "INTERNAL"})
			return
		}
		if !found {
			writeJSON(w, http.StatusNotFound, SaveResponse{OK: false, Error: "NO_GAME_STATE"})
			return
		}

		// The server is the authority: cumulative totals and part levels
		// never move backwards, whatever the client claims.
		if incoming.TotalMined < stored.TotalMined {
			writeJSON(w, http.StatusBadRequest, SaveResponse{OK: false, Error: "INVALID_STATE"})
			return
		}
		for id, level := range stored.Parts {
			if incoming.Parts[id] < level {
				writeJSON(w, http.StatusBadRequest, SaveResponse{OK: false, Error: "INVALID_STATE"})
				return
			}
		}

		newVersion, accepted, err := saveGameState(db, account.AccountID, incoming, expectedVersion)
		if err != nil {
			log.Println("Failed to save game state:", err)
			writeJSON(w, http.StatusInternalServerError, SaveResponse{OK: false, Error: "INTERNAL"})
			return
		}
		if !accepted {
			writeJSON(w, http.StatusConflict, SaveResponse{
				OK:      false,
				Error:   "VERSION_CONFLICT",
				Version: newVersion,
			})
			return
		}

		writeJSON(w, http.StatusOK, SaveResponse{OK: true, Version: newVersion})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
