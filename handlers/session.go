// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/blackstraysheep/khb-onlinesheet/middleware"
	"github.com/blackstraysheep/khb-onlinesheet/models"
)

// Session handles GET /judge/session
//
// Read-only resume endpoint for a reconnecting judge sheet: returns the
// current match, epoch, accepting flag, the judge's identity, and the
// latest ballot if one was already submitted this epoch. Performs no
// writes and works even while the round is closed to submissions.
func (h *SubmitHandler) Session(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Judge-Token")
	if token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Judge-Token header required")
		return
	}

	judgeID, role, err := resolveJudgeToken(h.db, token)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}
	if err != nil {
		slog.Error("failed to resolve judge token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if role != models.RoleJudge {
		middleware.ErrorResponse(w, http.StatusForbidden, "invalid role")
		return
	}

	state, err := loadRoundState(h.db)
	if err != nil {
		slog.Error("failed to load round state", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "state not found")
		return
	}
	if state.Epoch < 1 {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "invalid state epoch")
		return
	}
	if !state.CurrentMatchID.Valid {
		middleware.ErrorResponse(w, http.StatusConflict, "current match not set")
		return
	}
	matchID := state.CurrentMatchID.String

	match, err := loadMatchByID(h.db, matchID)
	if err != nil {
		slog.Error("failed to load current match", "error", err, "match_id", matchID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "match not found")
		return
	}

	member, err := onPanel(h.db, matchID, judgeID)
	if err != nil {
		slog.Error("failed to check judge panel", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !member {
		middleware.ErrorResponse(w, http.StatusForbidden, "unexpected judge")
		return
	}

	// Judge display name, best-effort
	var judgeName *string
	var name string
	err = h.db.QueryRow(`SELECT name FROM judges WHERE id = $1`, judgeID).Scan(&name)
	if err == nil {
		judgeName = &name
	} else if err != sql.ErrNoRows {
		slog.Warn("failed to load judge name", "error", err, "judge_id", judgeID)
	}

	// Latest ballot at the current epoch, if any
	var ballot *models.BallotPayload
	var b models.BallotPayload
	err = h.db.QueryRow(`
		SELECT red_work, red_app, red_total, red_flag,
			white_work, white_app, white_total, white_flag, revision
		FROM ballots
		WHERE match_id = $1 AND judge_id = $2 AND epoch = $3
	`, matchID, judgeID, state.Epoch).Scan(
		&b.Red.Work, &b.Red.App, &b.Red.Total, &b.Red.Flag,
		&b.White.Work, &b.White.App, &b.White.Total, &b.White.Flag, &b.Revision,
	)
	if err == nil {
		ballot = &b
	} else if err != sql.ErrNoRows {
		slog.Warn("failed to load submitted ballot", "error", err, "judge_id", judgeID)
	}

	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{
		Match:     matchInfo(match),
		Epoch:     state.Epoch,
		Accepting: state.Accepting,
		JudgeID:   judgeID,
		JudgeName: judgeName,
		Round:     models.RoundInfo{Slot: state.Epoch, Label: RoundLabel(state.Epoch, match.NumRounds)},
		Ballot:    ballot,
	})
}
