// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application and seeds the
// singleton round_state row. Safe to call multiple times - uses IF NOT EXISTS
// and an insert guarded by the row's existence.
//
// The DDL sticks to the subset of SQL accepted by both modernc.org/sqlite
// and PostgreSQL: $N placeholders, TRUE/FALSE literals, timestamps bound
// from Go rather than database NOW().
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if err := seedRoundState(db); err != nil {
		return fmt.Errorf("failed to seed round state: %w", err)
	}

	return nil
}

// seedRoundState inserts the single round_state row if it does not exist.
// The engine treats a missing row at request time as a fatal configuration
// error, so initialization happens here and only here.
func seedRoundState(db *sql.DB) error {
	_, err := db.Exec(`
		INSERT INTO round_state (id, epoch, accepting, quorum_reached, red_wins, white_wins)
		SELECT 1, 1, FALSE, FALSE, 0, 0
		WHERE NOT EXISTS (SELECT 1 FROM round_state WHERE id = 1)
	`)
	return err
}

const schema = `
-- Matches (red vs white, fixed planned round count)
CREATE TABLE IF NOT EXISTS matches (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    num_rounds INTEGER NOT NULL DEFAULT 5,
    red_team_name TEXT NOT NULL DEFAULT 'Red',
    white_team_name TEXT NOT NULL DEFAULT 'White',
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_matches_code ON matches(code);

-- Judges
CREATE TABLE IF NOT EXISTS judges (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL
);

-- Expected judge panels, one row per (match, judge)
CREATE TABLE IF NOT EXISTS judge_panel (
    match_id TEXT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
    judge_id TEXT NOT NULL REFERENCES judges(id) ON DELETE CASCADE,
    PRIMARY KEY (match_id, judge_id)
);

CREATE INDEX IF NOT EXISTS idx_judge_panel_match ON judge_panel(match_id);

-- Bearer tokens resolving to a judge identity
CREATE TABLE IF NOT EXISTS access_tokens (
    token TEXT PRIMARY KEY,
    judge_id TEXT NOT NULL REFERENCES judges(id) ON DELETE CASCADE,
    role TEXT NOT NULL DEFAULT 'judge',
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_access_tokens_judge ON access_tokens(judge_id);

-- Singleton state register (exactly one row, id = 1)
CREATE TABLE IF NOT EXISTS round_state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    current_match_id TEXT,
    epoch INTEGER NOT NULL DEFAULT 1,
    accepting BOOLEAN NOT NULL DEFAULT FALSE,
    quorum_reached BOOLEAN NOT NULL DEFAULT FALSE,
    red_wins INTEGER NOT NULL DEFAULT 0,
    white_wins INTEGER NOT NULL DEFAULT 0,
    wins_updated_at TIMESTAMP,
    updated_at TIMESTAMP
);

-- Ballots, one live row per (match, judge, epoch), revised in place
CREATE TABLE IF NOT EXISTS ballots (
    id TEXT PRIMARY KEY,
    match_id TEXT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
    judge_id TEXT NOT NULL REFERENCES judges(id) ON DELETE CASCADE,
    epoch INTEGER NOT NULL,
    revision INTEGER NOT NULL DEFAULT 1,
    red_work REAL NOT NULL,
    red_app REAL NOT NULL,
    red_total REAL NOT NULL,
    red_flag BOOLEAN NOT NULL,
    white_work REAL NOT NULL,
    white_app REAL NOT NULL,
    white_total REAL NOT NULL,
    white_flag BOOLEAN NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    UNIQUE (match_id, judge_id, epoch)
);

CREATE INDEX IF NOT EXISTS idx_ballots_match_epoch ON ballots(match_id, epoch);

-- Frozen round snapshots, replaceable per (match, epoch)
CREATE TABLE IF NOT EXISTS round_snapshots (
    match_id TEXT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
    epoch INTEGER NOT NULL,
    snapshot TEXT NOT NULL,
    winner TEXT NOT NULL CHECK (winner IN ('red', 'white', 'draw')),
    saved_at TIMESTAMP NOT NULL,
    PRIMARY KEY (match_id, epoch)
);

CREATE INDEX IF NOT EXISTS idx_round_snapshots_match ON round_snapshots(match_id);

-- Optional display metadata per (match, epoch); lookups are best-effort
CREATE TABLE IF NOT EXISTS round_slots (
    match_id TEXT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
    epoch INTEGER NOT NULL,
    slot INTEGER NOT NULL,
    label TEXT NOT NULL,
    PRIMARY KEY (match_id, epoch)
);

-- Append-only audit log
CREATE TABLE IF NOT EXISTS event_log (
    id TEXT PRIMARY KEY,
    event_kind TEXT NOT NULL,
    match_id TEXT,
    judge_id TEXT,
    epoch INTEGER,
    detail TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_event_log_match ON event_log(match_id);
CREATE INDEX IF NOT EXISTS idx_event_log_kind ON event_log(event_kind);
`
