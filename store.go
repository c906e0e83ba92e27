package main

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/hashrig/hashrig/game"
	"github.com/hashrig/hashrig/parts"
)

// loadOrCreateGameState returns the stored state for an account, creating a
// fresh level-1 rig on first contact.
func loadOrCreateGameState(db *sql.DB, accountID string, catalog parts.Catalog) (game.State, error) {
	state, found, err := loadGameState(db, accountID)
	if err != nil {
		return game.State{}, err
	}
	if found {
		return state, nil
	}

	state = game.NewState(catalog, time.Now().UTC())
	partsJSON, err := json.Marshal(state.Parts)
	if err != nil {
		return game.State{}, err
	}
	_, err = db.Exec(`
		INSERT INTO game_states (
			account_id,
			balance,
			total_mined,
			parts,
			is_mining,
			mining_start_time,
			last_updated,
			version
		)
		VALUES ($1, 0, 0, $2, FALSE, NULL, $3, 0)
		ON CONFLICT (account_id) DO NOTHING
	`, accountID, partsJSON, state.LastUpdated)
	if err != nil {
		return game.State{}, err
	}
	return state, nil
}

func loadGameState(db *sql.DB, accountID string) (game.State, bool, error) {
	var state game.State
	var partsJSON []byte
	var miningStart sql.NullTime

	err := db.QueryRow(`
		SELECT balance, total_mined, parts, is_mining, mining_start_time, last_updated, version
		FROM game_states
		WHERE account_id = $1
	`, accountID).Scan(
		&state.Balance,
		&state.TotalMined,
		&partsJSON,
		&state.IsMining,
		&miningStart,
		&state.LastUpdated,
		&state.Version,
	)
	if err == sql.ErrNoRows {
		return game.State{}, false, nil
	}
	if err != nil {
		return game.State{}, false, err
	}

	if err := json.Unmarshal(partsJSON, &state.Parts); err != nil {
		return game.State{}, false, err
	}
	if miningStart.Valid {
		t := miningStart.Time
		state.MiningStartTime = &t
	}
	return state, true, nil
}

// saveGameState writes a state conditioned on expectedVersion matching the
// stored row. On a match the version is incremented and the new value
// returned; on a mismatch the second return is false and the first carries
// the authoritative stored version.
func saveGameState(db *sql.DB, accountID string, state game.State, expectedVersion int64) (int64, bool, error) {
	partsJSON, err := json.Marshal(state.Parts)
	if err != nil {
		return 0, false, err
	}

	newVersion := expectedVersion + 1
	result, err := db.Exec(`
		UPDATE game_states
		SET balance = $2,
			total_mined = $3,
			parts = $4,
			is_mining = $5,
			mining_start_time = $6,
			last_updated = $7,
			version = $8
		WHERE account_id = $1 AND version = $9
	`, accountID,
		state.Balance,
		state.TotalMined,
		partsJSON,
		state.IsMining,
		nullableTime(state.MiningStartTime),
		time.Now().UTC(),
		newVersion,
		expectedVersion,
	)
	if err != nil {
		return 0, false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	if affected == 1 {
		return newVersion, true, nil
	}

	var current int64
	if err := db.QueryRow(`
		SELECT version FROM game_states WHERE account_id = $1
	`, accountID).Scan(&current); err != nil {
		return 0, false, err
	}
	return current, false, nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
