// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/blackstraysheep/khb-onlinesheet/cliparse"
	"github.com/blackstraysheep/khb-onlinesheet/middleware"
	"github.com/blackstraysheep/khb-onlinesheet/models"
)

type SubmitHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewSubmitHandler(db *sql.DB, cfg cliparse.Config) *SubmitHandler {
	return &SubmitHandler{db: db, cfg: cfg}
}

// resolveJudgeToken maps a bearer token to a judge identity and role.
// sql.ErrNoRows means the token is unknown.
func resolveJudgeToken(db *sql.DB, token string) (judgeID, role string, err error) {
	err = db.QueryRow(`
		SELECT judge_id, role FROM access_tokens WHERE token = $1
	`, token).Scan(&judgeID, &role)
	return judgeID, role, err
}

// onPanel reports whether the judge belongs to the match's expected panel.
func onPanel(db *sql.DB, matchID, judgeID string) (bool, error) {
	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM judge_panel
			WHERE match_id = $1 AND judge_id = $2
		)
	`, matchID, judgeID).Scan(&exists)
	return exists, err
}

// validateSide checks one team's scores: work/app/total finite and within
// [0,100], and total must equal work+app exactly. The returned error names
// the offending field.
func validateSide(side models.Side, sideName string) error {
	checks := []struct {
		field string
		value float64
	}{
		{"work", side.Work},
		{"app", side.App},
		{"total", side.Total},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) || c.value < 0 || c.value > 100 {
			return fmt.Errorf("invalid %s.%s", sideName, c.field)
		}
	}
	if side.Total != side.Work+side.App {
		return fmt.Errorf("invalid %s.total_mismatch", sideName)
	}
	return nil
}

// SubmitBallot handles POST /judge/ballots
func (h *SubmitHandler) SubmitBallot(w http.ResponseWriter, r *http.Request) {
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
	epoch := state.Epoch

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

	if !state.Accepting {
		middleware.ErrorResponse(w, http.StatusConflict, "not accepting")
		return
	}

	var req models.SubmitBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := validateSide(req.Red, "red"); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateSide(req.White, "white"); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	// Upsert by (match, judge, epoch): first submission inserts revision 1,
	// every resubmission bumps the counter in place. No history is kept.
	now := time.Now()
	eventKind := models.EventSubmit
	var revision int64 = 1

	var existingID string
	var existingRev int64
	err = h.db.QueryRow(`
		SELECT id, revision FROM ballots
		WHERE match_id = $1 AND judge_id = $2 AND epoch = $3
	`, matchID, judgeID, epoch).Scan(&existingID, &existingRev)

	switch {
	case err == sql.ErrNoRows:
		_, err = h.db.Exec(`
			INSERT INTO ballots (id, match_id, judge_id, epoch, revision,
				red_work, red_app, red_total, red_flag,
				white_work, white_app, white_total, white_flag,
				created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`, uuid.NewString(), matchID, judgeID, epoch, revision,
			req.Red.Work, req.Red.App, req.Red.Total, req.Red.Flag,
			req.White.Work, req.White.App, req.White.Total, req.White.Flag,
			now, now)
		if err != nil {
			slog.Error("failed to insert ballot", "error", err, "judge_id", judgeID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save ballot")
			return
		}
	case err != nil:
		slog.Error("failed to query ballot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	default:
		revision = existingRev + 1
		eventKind = models.EventRevise
		_, err = h.db.Exec(`
			UPDATE ballots
			SET revision = $1,
				red_work = $2, red_app = $3, red_total = $4, red_flag = $5,
				white_work = $6, white_app = $7, white_total = $8, white_flag = $9,
				updated_at = $10
			WHERE id = $11
		`, revision,
			req.Red.Work, req.Red.App, req.Red.Total, req.Red.Flag,
			req.White.Work, req.White.App, req.White.Total, req.White.Flag,
			now, existingID)
		if err != nil {
			slog.Error("failed to update ballot", "error", err, "judge_id", judgeID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save ballot")
			return
		}
	}

	appendEvent(h.db, eventKind, &matchID, &judgeID, &epoch, req)

	h.latchQuorum(matchID, epoch)

	slog.Info("ballot recorded", "match_id", matchID, "judge_id", judgeID,
		"epoch", epoch, "revision", revision, "event_kind", eventKind)

	middleware.JSONResponse(w, http.StatusOK, models.SubmitBallotResponse{
		EventKind: eventKind,
		Revision:  revision,
		Match:     matchInfo(match),
		Epoch:     epoch,
		Round:     models.RoundInfo{Slot: epoch, Label: RoundLabel(epoch, match.NumRounds)},
	})
}

// latchQuorum sets the one-shot quorum flag once every expected judge has a
// ballot at the given epoch, and emits a single informational event.
//
// Advisory only: this is a check-then-act across two round-trips and may
// under race fire twice or be skipped when the epoch moves. Confirm
// re-verifies quorum independently, so failures here are logged and dropped.
func (h *SubmitHandler) latchQuorum(matchID string, epoch int64) {
	expected, err := panelJudgeIDs(h.db, matchID)
	if err != nil {
		slog.Warn("quorum check: failed to load panel", "error", err)
		return
	}
	submitted, err := submittedJudgeIDs(h.db, matchID, epoch)
	if err != nil {
		slog.Warn("quorum check: failed to load submissions", "error", err)
		return
	}
	if !allArrived(expected, submitted) {
		return
	}

	state, err := loadRoundState(h.db)
	if err != nil {
		slog.Warn("quorum check: failed to reload state", "error", err)
		return
	}
	// Latch only while the submission's epoch is still current, and only once.
	if state.QuorumReached || state.Epoch != epoch {
		return
	}

	_, err = h.db.Exec(`
		UPDATE round_state SET quorum_reached = TRUE, updated_at = $1 WHERE id = 1
	`, time.Now())
	if err != nil {
		slog.Warn("quorum check: failed to set latch", "error", err)
		return
	}

	appendEvent(h.db, models.EventQuorum, &matchID, nil, &epoch, map[string]interface{}{
		"match_id": matchID,
		"epoch":    epoch,
	})

	slog.Info("quorum reached", "match_id", matchID, "epoch", epoch)
}
