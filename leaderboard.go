package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashrig/hashrig/parts"
)

type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	Username    string  `json:"username"`
	TotalMined  float64 `json:"totalMined"`
	Balance     float64 `json:"balance"`
	HashRate    float64 `json:"hashRate"`
	IsMining    bool    `json:"isMining"`
	LastUpdated string  `json:"lastUpdated"`
}

type LeaderboardResponse struct {
	OK       bool               `json:"ok"`
	Error    string             `json:"error,omitempty"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
	Total    int                `json:"total"`
	Results  []LeaderboardEntry `json:"results"`
}

type leaderboardFilters struct {
	Query    string
	Sort     string
	Page     int
	PageSize int
}

func leaderboardHandler(db *sql.DB, catalog parts.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		filters := parseLeaderboardFilters(r)
		orderBy := leaderboardOrderBy(filters.Sort)

		whereClauses := []string{"1=1"}
		args := []interface{}{}
		if filters.Query != "" {
			args = append(args, "%"+filters.Query+"%")
			whereClauses = append(whereClauses, "a.username ILIKE $"+strconv.Itoa(len(args)))
		}
		where := strings.Join(whereClauses, " AND ")

		var total int
		countQuery := fmt.Sprintf(`
			SELECT COUNT(*)
			FROM game_states g
			JOIN accounts a ON a.account_id = g.account_id
			WHERE %s
		`, where)
		if err := db.QueryRow(countQuery, args...).Scan(&total); err != nil {
			writeJSON(w, http.StatusInternalServerError, LeaderboardResponse{OK: false, Error: "INTERNAL"})
			return
		}

		offset := (filters.Page - 1) * filters.PageSize
		argsWithPage := append(args, filters.PageSize, offset)
		resultsQuery := fmt.Sprintf(`
			SELECT
				ROW_NUMBER() OVER (ORDER BY %s) AS rank,
				a.username,
				g.total_mined,
				g.balance,
				g.parts,
				g.is_mining,
				g.last_updated
			FROM game_states g
			JOIN accounts a ON a.account_id = g.account_id
			WHERE %s
			ORDER BY %s
			LIMIT $%d OFFSET $%d
		`, orderBy, where, orderBy, len(args)+1, len(args)+2)

		rows, err := db.Query(resultsQuery, argsWithPage...)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, LeaderboardResponse{OK: false, Error: "INTERNAL"})
			return
		}
		defer rows.Close()

		results := []LeaderboardEntry{}
		for rows.Next() {
			var entry LeaderboardEntry
			var rawParts []byte
			var lastUpdated time.Time
			if err := rows.Scan(&entry.Rank, &entry.Username, &entry.TotalMined, &entry.Balance, &rawParts, &entry.IsMining, &lastUpdated); err != nil {
				continue
			}
			var inventory parts.Inventory
			if err := json.Unmarshal(rawParts, &inventory); err == nil {
				entry.HashRate = catalog.TotalHashRate(inventory)
			}
			entry.LastUpdated = lastUpdated.UTC().Format(time.RFC3339)
			results = append(results, entry)
		}

		writeJSON(w, http.StatusOK, LeaderboardResponse{
			OK:       true,
			Page:     filters.Page,
			PageSize: filters.PageSize,
			Total:    total,
			Results:  results,
		})
	}
}

func parseLeaderboardFilters(r *http.Request) leaderboardFilters {
	query := r.URL.Query()
	page := parsePositiveInt(query.Get("page"), 1)
	pageSize := parsePositiveInt(query.Get("pageSize"), 50)
	if pageSize > 200 {
		pageSize = 200
	}
	return leaderboardFilters{
		Query:    strings.TrimSpace(query.Get("q")),
		Sort:     strings.TrimSpace(query.Get("sort")),
		Page:     page,
		PageSize: pageSize,
	}
}

func leaderboardOrderBy(sortKey string) string {
	switch sortKey {
	case "balance_desc":
		return "g.balance DESC, g.total_mined DESC, a.username ASC"
	case "recent":
		return "g.last_updated DESC, a.username ASC"
	case "total_mined_desc", "":
		fallthrough
	default:
		return "g.total_mined DESC, g.balance DESC, a.username ASC"
	}
}

func parsePositiveInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}
