package main

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const sessionTTL = 7 * 24 * time.Hour

type Account struct {
	AccountID string
	Username  string
	Email     string
}

func createAccount(db *sql.DB, username string, email string, password string) (*Account, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	if !isValidUsername(username) {
		return nil, errors.New("INVALID_USERNAME")
	}
	if len(password) < 8 || len(password) > 128 {
		return nil, errors.New("INVALID_PASSWORD")
	}
	email = strings.TrimSpace(email)

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	accountID := uuid.NewString()
	_, err = db.Exec(`
		INSERT INTO accounts (
			account_id,
			username,
			email,
			password_hash,
			created_at,
			last_login_at
		)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`, accountID, username, email, hash)
	if err != nil {
		if strings.Contains(err.Error(), "accounts_username_key") {
			return nil, errors.New("USERNAME_TAKEN")
		}
		return nil, err
	}

	return &Account{
		AccountID: accountID,
		Username:  username,
		Email:     email,
	}, nil
}

func authenticate(db *sql.DB, username string, password string) (*Account, error) {
	username = strings.TrimSpace(strings.ToLower(username))

	var account Account
	var hash string
	if err := db.QueryRow(`
		SELECT account_id, username, email, password_hash
		FROM accounts
		WHERE username = $1
	`, username).Scan(&account.AccountID, &account.Username, &account.Email, &hash); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("INVALID_CREDENTIALS")
		}
		return nil, err
	}

	if !verifyPassword(hash, password) {
		return nil, errors.New("INVALID_CREDENTIALS")
	}

	_, _ = db.Exec(`
		UPDATE accounts
		SET last_login_at = NOW()
		WHERE account_id = $1
	`, account.AccountID)

	return &account, nil
}

func createSession(db *sql.DB, accountID string) (string, error) {
	token, err := randomToken(24)
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().UTC().Add(sessionTTL)
	_, err = db.Exec(`
		INSERT INTO sessions (session_id, account_id, expires_at)
		VALUES ($1, $2, $3)
	`, token, accountID, expiresAt)
	if err != nil {
		return "", err
	}

	return token, nil
}

// getBearerAccount resolves the Authorization header to an account, clearing
// the session when it has expired.
func getBearerAccount(db *sql.DB, r *http.Request) (*Account, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, errors.New("UNAUTHORIZED")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return nil, errors.New("UNAUTHORIZED")
	}

	var account Account
	var expiresAt time.Time
	if err := db.QueryRow(`
		SELECT a.account_id, a.username, a.email, s.expires_at
		FROM sessions s
		JOIN accounts a ON a.account_id = s.account_id
		WHERE s.session_id = $1
	`, token).Scan(&account.AccountID, &account.Username, &account.Email, &expiresAt); err != nil {
		return nil, errors.New("UNAUTHORIZED")
	}

	if time.Now().UTC().After(expiresAt) {
		_, _ = db.Exec(`DELETE FROM sessions WHERE session_id = $1`, token)
		return nil, errors.New("SESSION_EXPIRED")
	}

	return &account, nil
}

func randomToken(bytesLen int) (string, error) {
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashPassword(password string) (string, error) {
	salt, err := randomToken(16)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(salt + password))
	hash := base64.RawURLEncoding.EncodeToString(sum[:])
	return salt + ":" + hash, nil
}

func verifyPassword(stored string, password string) bool {
	fields := strings.Split(stored, ":")
	if len(fields) != 2 {
		return false
	}
	salt := fields[0]
	encoded := fields[1]

	sum := sha256.Sum256([]byte(salt + password))
	computed := base64.RawURLEncoding.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(computed), []byte(encoded)) == 1
}
