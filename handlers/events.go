// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// appendEvent writes one append-only event_log row. Append failures are
// logged and swallowed: durability of the primary state write always wins
// over completeness of the audit trail.
func appendEvent(db *sql.DB, kind string, matchID, judgeID *string, epoch *int64, detail interface{}) {
	var detailJSON *string
	if detail != nil {
		b, err := json.Marshal(detail)
		if err != nil {
			slog.Warn("failed to marshal event detail", "kind", kind, "error", err)
		} else {
			s := string(b)
			detailJSON = &s
		}
	}

	_, err := db.Exec(`
		INSERT INTO event_log (id, event_kind, match_id, judge_id, epoch, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.NewString(), kind, matchID, judgeID, epoch, detailJSON, time.Now())
	if err != nil {
		slog.Warn("event log append failed", "kind", kind, "error", err)
	}
}
