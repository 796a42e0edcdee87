// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/blackstraysheep/khb-onlinesheet/auth"
	"github.com/blackstraysheep/khb-onlinesheet/cliparse"
	"github.com/blackstraysheep/khb-onlinesheet/db"
	"github.com/blackstraysheep/khb-onlinesheet/models"
)

// SetupTestDB creates a fresh in-memory sqlite database with the full
// schema and the seeded round_state row.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// A single connection keeps every query on the same in-memory database.
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3319,
		DatabaseURL:  ":memory:",
		DatabaseType: "sqlite",
		AdminSecret:  "test-admin-secret",
		TokenPrefix:  "khb-",
	}
}

// CreateTestMatch inserts a match and returns its ID.
func CreateTestMatch(t *testing.T, conn *sql.DB, code string, numRounds int64) string {
	t.Helper()

	matchID := uuid.NewString()
	now := time.Now()
	_, err := conn.Exec(`
		INSERT INTO matches (id, code, name, num_rounds, red_team_name, white_team_name, created_at, updated_at)
		VALUES ($1, $2, 'Test Match', $3, 'Red Dragons', 'White Tigers', $4, $5)
	`, matchID, code, numRounds, now, now)
	if err != nil {
		t.Fatalf("Failed to create test match: %v", err)
	}

	return matchID
}

// CreateTestJudge inserts a judge on the match's panel with an issued
// token, returning the judge ID and token.
func CreateTestJudge(t *testing.T, conn *sql.DB, matchID, name string) (judgeID, token string) {
	t.Helper()

	judgeID = uuid.NewString()
	now := time.Now()
	_, err := conn.Exec(`
		INSERT INTO judges (id, name, created_at) VALUES ($1, $2, $3)
	`, judgeID, name, now)
	if err != nil {
		t.Fatalf("Failed to create test judge: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO judge_panel (match_id, judge_id) VALUES ($1, $2)
	`, matchID, judgeID)
	if err != nil {
		t.Fatalf("Failed to add judge to panel: %v", err)
	}

	token, err = auth.GenerateJudgeToken("khb-")
	if err != nil {
		t.Fatalf("Failed to generate judge token: %v", err)
	}
	_, err = conn.Exec(`
		INSERT INTO access_tokens (token, judge_id, role, created_at)
		VALUES ($1, $2, 'judge', $3)
	`, token, judgeID, now)
	if err != nil {
		t.Fatalf("Failed to create access token: %v", err)
	}

	return judgeID, token
}

// SetCurrentMatch points the singleton round_state at the match.
func SetCurrentMatch(t *testing.T, conn *sql.DB, matchID string, epoch int64, accepting bool) {
	t.Helper()

	_, err := conn.Exec(`
		UPDATE round_state
		SET current_match_id = $1, epoch = $2, accepting = $3, quorum_reached = FALSE, updated_at = $4
		WHERE id = 1
	`, matchID, epoch, accepting, time.Now())
	if err != nil {
		t.Fatalf("Failed to set current match: %v", err)
	}
}

// SubmitTestBallot inserts a ballot row directly, bypassing the handler.
func SubmitTestBallot(t *testing.T, conn *sql.DB, matchID, judgeID string, epoch int64, red, white models.Side) string {
	t.Helper()

	ballotID := uuid.NewString()
	now := time.Now()
	_, err := conn.Exec(`
		INSERT INTO ballots (id, match_id, judge_id, epoch, revision,
			red_work, red_app, red_total, red_flag,
			white_work, white_app, white_total, white_flag,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, 1, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, ballotID, matchID, judgeID, epoch,
		red.Work, red.App, red.Total, red.Flag,
		white.Work, white.App, white.Total, white.Flag,
		now, now)
	if err != nil {
		t.Fatalf("Failed to create test ballot: %v", err)
	}

	return ballotID
}

// InsertTestSnapshot writes a minimal snapshot row with the given winner.
func InsertTestSnapshot(t *testing.T, conn *sql.DB, matchID string, epoch int64, winner string) {
	t.Helper()

	snapshot, _ := json.Marshal(map[string]interface{}{
		"epoch": epoch,
		"items": []interface{}{},
	})
	_, err := conn.Exec(`
		INSERT INTO round_snapshots (match_id, epoch, snapshot, winner, saved_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (match_id, epoch)
		DO UPDATE SET snapshot = EXCLUDED.snapshot, winner = EXCLUDED.winner, saved_at = EXCLUDED.saved_at
	`, matchID, epoch, string(snapshot), winner, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test snapshot: %v", err)
	}
}

// CountEvents returns the number of event_log rows of the given kind.
func CountEvents(t *testing.T, conn *sql.DB, kind string) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM event_log WHERE event_kind = $1`, kind).Scan(&n); err != nil {
		t.Fatalf("Failed to count events: %v", err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
