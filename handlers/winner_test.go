// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"testing"

	"github.com/blackstraysheep/khb-onlinesheet/models"
	"github.com/blackstraysheep/khb-onlinesheet/testutil"
)

func flagItem(redFlag, whiteFlag bool) models.SnapshotItem {
	return models.SnapshotItem{
		Red:   models.SideResult{Flag: redFlag},
		White: models.SideResult{Flag: whiteFlag},
	}
}

func TestDecideWinner(t *testing.T) {
	tests := []struct {
		name     string
		items    []models.SnapshotItem
		expected string
	}{
		{
			name: "red majority",
			items: []models.SnapshotItem{
				flagItem(true, false),
				flagItem(true, false),
				flagItem(false, true),
			},
			expected: models.WinnerRed,
		},
		{
			name: "white majority",
			items: []models.SnapshotItem{
				flagItem(false, true),
				flagItem(true, false),
				flagItem(false, true),
			},
			expected: models.WinnerWhite,
		},
		{
			name: "equal flags is a draw",
			items: []models.SnapshotItem{
				flagItem(true, false),
				flagItem(false, true),
			},
			expected: models.WinnerDraw,
		},
		{
			name: "no flags raised is a draw",
			items: []models.SnapshotItem{
				flagItem(false, false),
				flagItem(false, false),
				flagItem(false, false),
			},
			expected: models.WinnerDraw,
		},
		{
			name:     "single judge decides alone",
			items:    []models.SnapshotItem{flagItem(true, false)},
			expected: models.WinnerRed,
		},
		{
			name:     "no items is a draw",
			items:    nil,
			expected: models.WinnerDraw,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecideWinner(tt.items); got != tt.expected {
				t.Errorf("Expected winner %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRoundLabel(t *testing.T) {
	tests := []struct {
		name      string
		epoch     int64
		numRounds int64
		expected  string
	}{
		{"first of five", 1, 5, "Senpo"},
		{"second of five", 2, 5, "Jiho"},
		{"third of five", 3, 5, "Chuken"},
		{"fourth of five", 4, 5, "Fukusho"},
		{"last of five", 5, 5, "Taisho"},
		{"first of three", 1, 3, "Senpo"},
		{"second of three", 2, 3, "Chuken"},
		{"last of three", 3, 3, "Taisho"},
		{"past the planned rounds", 6, 5, "Round 6"},
		{"unrecognized round count", 2, 7, "Round 2"},
		{"single round match", 1, 1, "Round 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoundLabel(tt.epoch, tt.numRounds); got != tt.expected {
				t.Errorf("RoundLabel(%d, %d) = %q, want %q", tt.epoch, tt.numRounds, got, tt.expected)
			}
		})
	}
}

func TestRecomputeWinTally(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	matchID := testutil.CreateTestMatch(t, conn, "TALLY-1", 5)

	testutil.InsertTestSnapshot(t, conn, matchID, 1, models.WinnerRed)
	testutil.InsertTestSnapshot(t, conn, matchID, 2, models.WinnerWhite)
	testutil.InsertTestSnapshot(t, conn, matchID, 3, models.WinnerRed)
	testutil.InsertTestSnapshot(t, conn, matchID, 4, models.WinnerDraw)

	red, white, err := RecomputeWinTally(conn, matchID)
	if err != nil {
		t.Fatalf("RecomputeWinTally failed: %v", err)
	}
	if red != 2 || white != 1 {
		t.Errorf("Expected tally 2-1, got %d-%d", red, white)
	}

	// Overwriting a round's winner changes the tally to match; nothing
	// accumulates across calls.
	testutil.InsertTestSnapshot(t, conn, matchID, 1, models.WinnerWhite)

	red, white, err = RecomputeWinTally(conn, matchID)
	if err != nil {
		t.Fatalf("RecomputeWinTally after overwrite failed: %v", err)
	}
	if red != 1 || white != 2 {
		t.Errorf("Expected tally 1-2 after overwrite, got %d-%d", red, white)
	}
}

func TestRecomputeWinTallyIgnoresOtherMatches(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	matchA := testutil.CreateTestMatch(t, conn, "TALLY-A", 5)
	matchB := testutil.CreateTestMatch(t, conn, "TALLY-B", 5)

	testutil.InsertTestSnapshot(t, conn, matchA, 1, models.WinnerRed)
	testutil.InsertTestSnapshot(t, conn, matchB, 1, models.WinnerWhite)
	testutil.InsertTestSnapshot(t, conn, matchB, 2, models.WinnerWhite)

	red, white, err := RecomputeWinTally(conn, matchA)
	if err != nil {
		t.Fatalf("RecomputeWinTally failed: %v", err)
	}
	if red != 1 || white != 0 {
		t.Errorf("Expected tally 1-0 for match A, got %d-%d", red, white)
	}
}

func TestAllArrived(t *testing.T) {
	tests := []struct {
		name      string
		expected  []string
		submitted []string
		want      bool
	}{
		{"all present", []string{"a", "b"}, []string{"b", "a"}, true},
		{"one missing", []string{"a", "b", "c"}, []string{"a", "b"}, false},
		{"extra submissions ignored", []string{"a"}, []string{"a", "z"}, true},
		{"empty panel never satisfied", nil, []string{"a"}, false},
		{"nothing submitted", []string{"a"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := allArrived(tt.expected, tt.submitted); got != tt.want {
				t.Errorf("allArrived(%v, %v) = %v, want %v", tt.expected, tt.submitted, got, tt.want)
			}
		})
	}
}
