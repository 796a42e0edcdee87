// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"

	"github.com/blackstraysheep/khb-onlinesheet/models"
)

var errStateMissing = errors.New("round state not found")

// roundState mirrors the singleton round_state row. There is exactly one
// live instance (id = 1), seeded by db.CreateSchema.
type roundState struct {
	CurrentMatchID sql.NullString
	Epoch          int64
	Accepting      bool
	QuorumReached  bool
	RedWins        int64
	WhiteWins      int64
}

// loadRoundState fetches the singleton state row. Its absence is a fatal
// configuration error, not a lifecycle state.
func loadRoundState(db *sql.DB) (*roundState, error) {
	var st roundState
	err := db.QueryRow(`
		SELECT current_match_id, epoch, accepting, quorum_reached, red_wins, white_wins
		FROM round_state WHERE id = 1
	`).Scan(&st.CurrentMatchID, &st.Epoch, &st.Accepting, &st.QuorumReached, &st.RedWins, &st.WhiteWins)
	if err == sql.ErrNoRows {
		return nil, errStateMissing
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func loadMatchByID(db *sql.DB, id string) (*models.Match, error) {
	return scanMatch(db.QueryRow(`
		SELECT id, code, name, num_rounds, red_team_name, white_team_name
		FROM matches WHERE id = $1
	`, id))
}

func loadMatchByCode(db *sql.DB, code string) (*models.Match, error) {
	return scanMatch(db.QueryRow(`
		SELECT id, code, name, num_rounds, red_team_name, white_team_name
		FROM matches WHERE code = $1
	`, code))
}

func scanMatch(row *sql.Row) (*models.Match, error) {
	var m models.Match
	err := row.Scan(&m.ID, &m.Code, &m.Name, &m.NumRounds, &m.RedTeamName, &m.WhiteTeamName)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func matchInfo(m *models.Match) models.MatchInfo {
	return models.MatchInfo{
		ID:            m.ID,
		Code:          m.Code,
		Name:          m.Name,
		RedTeamName:   m.RedTeamName,
		WhiteTeamName: m.WhiteTeamName,
		NumRounds:     m.NumRounds,
	}
}

// panelJudgeIDs returns the expected judge set for a match.
func panelJudgeIDs(db *sql.DB, matchID string) ([]string, error) {
	rows, err := db.Query(`SELECT judge_id FROM judge_panel WHERE match_id = $1`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// submittedJudgeIDs returns the distinct judges with a ballot at (match, epoch).
func submittedJudgeIDs(db *sql.DB, matchID string, epoch int64) ([]string, error) {
	rows, err := db.Query(`
		SELECT DISTINCT judge_id FROM ballots WHERE match_id = $1 AND epoch = $2
	`, matchID, epoch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// allArrived reports whether every expected judge appears in submitted.
// An empty expected set never counts as satisfied; quorum over nobody is
// an error condition handled by the caller.
func allArrived(expected, submitted []string) bool {
	if len(expected) == 0 {
		return false
	}
	seen := make(map[string]bool, len(submitted))
	for _, id := range submitted {
		seen[id] = true
	}
	for _, id := range expected {
		if !seen[id] {
			return false
		}
	}
	return true
}
