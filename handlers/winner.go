// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"

	"github.com/blackstraysheep/khb-onlinesheet/models"
)

// WinnerRule decides a round winner from frozen ballot items. The default
// is flag majority; swapping in a point-based tie-break means replacing the
// function, not the confirm flow.
type WinnerRule func(items []models.SnapshotItem) string

// DecideWinner is the flag-majority rule: each judge with a raised red flag
// counts one point for red, symmetric for white. Strict majority wins;
// everything else (including 0-0) is a draw.
func DecideWinner(items []models.SnapshotItem) string {
	redFlags := 0
	whiteFlags := 0

	for _, it := range items {
		if it.Red.Flag {
			redFlags++
		}
		if it.White.Flag {
			whiteFlags++
		}
	}

	switch {
	case redFlags > whiteFlags:
		return models.WinnerRed
	case whiteFlags > redFlags:
		return models.WinnerWhite
	default:
		return models.WinnerDraw
	}
}

// Traditional order names for the recognized team-match formats.
var (
	roundNamesFive  = []string{"Senpo", "Jiho", "Chuken", "Fukusho", "Taisho"}
	roundNamesThree = []string{"Senpo", "Chuken", "Taisho"}
)

// RoundLabel derives a human-readable round name from the round's position
// and the match's planned round count. Unrecognized counts and out-of-range
// epochs fall back to a generic label. Pure function.
func RoundLabel(epoch, numRounds int64) string {
	var names []string
	switch numRounds {
	case 5:
		names = roundNamesFive
	case 3:
		names = roundNamesThree
	}
	if epoch >= 1 && epoch <= int64(len(names)) {
		return names[epoch-1]
	}
	return fmt.Sprintf("Round %d", epoch)
}

// RecomputeWinTally rescans every persisted snapshot for the match and
// counts wins per side. Always a full recompute, never an incremental
// bump, so repeated or out-of-order confirms converge on the same tally.
func RecomputeWinTally(db *sql.DB, matchID string) (redWins, whiteWins int64, err error) {
	rows, err := db.Query(`SELECT winner FROM round_snapshots WHERE match_id = $1`, matchID)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var winner string
		if err := rows.Scan(&winner); err != nil {
			return 0, 0, err
		}
		switch winner {
		case models.WinnerRed:
			redWins++
		case models.WinnerWhite:
			whiteWins++
		}
	}
	return redWins, whiteWins, rows.Err()
}
