// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/blackstraysheep/khb-onlinesheet/auth"
	"github.com/blackstraysheep/khb-onlinesheet/cliparse"
	"github.com/blackstraysheep/khb-onlinesheet/middleware"
	"github.com/blackstraysheep/khb-onlinesheet/models"
)

type ControlHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewControlHandler(db *sql.DB, cfg cliparse.Config) *ControlHandler {
	return &ControlHandler{db: db, cfg: cfg}
}

// requireAdmin gates operator endpoints on the shared secret in the
// X-Admin-Secret header. Writes the error response and returns false when
// the request must not proceed.
func requireAdmin(w http.ResponseWriter, r *http.Request, cfg cliparse.Config) bool {
	err := auth.CheckAdminSecret(r.Header.Get("X-Admin-Secret"), cfg.AdminSecret)
	if errors.Is(err, auth.ErrSecretNotSet) {
		slog.Error("admin secret not configured")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "server misconfigured: admin secret not set")
		return false
	}
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	return true
}

// Confirm handles POST /control/confirm
//
// Freezes the current round for the named match: re-verifies quorum from
// the panel and the ballots on record, writes the snapshot with a computed
// winner, recomputes the win tally from all snapshots, and closes the
// accepting window. Re-confirming the same round overwrites the snapshot.
func (h *ControlHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, h.cfg) {
		return
	}

	var req models.ConfirmRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.MatchCode) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "match_code is required")
		return
	}

	match, err := loadMatchByCode(h.db, strings.TrimSpace(req.MatchCode))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "match not found")
		return
	}
	if err != nil {
		slog.Error("failed to load match", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
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
	epoch := state.Epoch

	// Optional display metadata; absence is not an error.
	var slot *int64
	var slotLabel *string
	var s int64
	var lbl string
	err = h.db.QueryRow(`
		SELECT slot, label FROM round_slots WHERE match_id = $1 AND epoch = $2
	`, match.ID, epoch).Scan(&s, &lbl)
	if err == nil {
		slot = &s
		slotLabel = &lbl
	} else if err != sql.ErrNoRows {
		slog.Warn("round slot lookup failed", "error", err, "match_id", match.ID, "epoch", epoch)
	}

	expected, err := panelJudgeIDs(h.db, match.ID)
	if err != nil {
		slog.Error("failed to load judge panel", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to load judge panel")
		return
	}
	if len(expected) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "no judges registered for match")
		return
	}

	ballots, err := loadBallots(h.db, match.ID, epoch)
	if err != nil {
		slog.Error("failed to load ballots", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to load ballots")
		return
	}

	// Authoritative quorum check; the latch set at submission time is
	// advisory and plays no part here.
	submitted := make([]string, 0, len(ballots))
	for _, b := range ballots {
		submitted = append(submitted, b.JudgeID)
	}
	if !allArrived(expected, submitted) {
		middleware.ErrorResponseDetail(w, http.StatusBadRequest, "not all judges have submitted yet",
			models.QuorumDetail{ExpectedCount: len(expected), SubmittedCount: len(submitted)})
		return
	}

	names, err := judgeNames(h.db)
	if err != nil {
		slog.Error("failed to load judges", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to load judges")
		return
	}

	items := make([]models.SnapshotItem, 0, len(ballots))
	for _, b := range ballots {
		var judgeName *string
		if n, ok := names[b.JudgeID]; ok {
			judgeName = &n
		}
		items = append(items, models.SnapshotItem{
			JudgeID:   b.JudgeID,
			JudgeName: judgeName,
			MatchID:   match.ID,
			MatchCode: match.Code,
			MatchName: match.Name,
			Epoch:     epoch,
			Revision:  b.Revision,
			Red: models.SideResult{
				WorkPoint: b.Red.Work, AppPoint: b.Red.App, Total: b.Red.Total, Flag: b.Red.Flag,
			},
			White: models.SideResult{
				WorkPoint: b.White.Work, AppPoint: b.White.App, Total: b.White.Total, Flag: b.White.Flag,
			},
		})
	}

	now := time.Now()
	winner := DecideWinner(items)

	snapshot := models.Snapshot{
		Match:   models.MatchInfo{ID: match.ID, Code: match.Code, Name: match.Name},
		Epoch:   epoch,
		Round:   models.SnapshotRound{Slot: slot, Label: slotLabel},
		SavedAt: now,
		Items:   items,
	}
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		slog.Error("failed to marshal snapshot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to save snapshot")
		return
	}

	// Replaceable by key: a re-confirm after changed ballots overwrites the
	// prior snapshot for this (match, epoch).
	_, err = h.db.Exec(`
		INSERT INTO round_snapshots (match_id, epoch, snapshot, winner, saved_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (match_id, epoch)
		DO UPDATE SET snapshot = EXCLUDED.snapshot, winner = EXCLUDED.winner, saved_at = EXCLUDED.saved_at
	`, match.ID, epoch, string(snapshotJSON), winner, now)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to save snapshot")
		return
	}

	// Snapshot is durable at this point. A tally failure leaves it in place;
	// confirm is retry-safe because both steps are idempotent.
	redWins, whiteWins, err := RecomputeWinTally(h.db, match.ID)
	if err != nil {
		slog.Error("failed to recompute win tally", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to recalc win tally")
		return
	}

	_, err = h.db.Exec(`
		UPDATE round_state
		SET accepting = FALSE, red_wins = $1, white_wins = $2, wins_updated_at = $3, updated_at = $4
		WHERE id = 1
	`, redWins, whiteWins, now, now)
	if err != nil {
		slog.Error("failed to update round state", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to update state")
		return
	}

	roundLabel := RoundLabel(epoch, match.NumRounds)
	if slotLabel != nil {
		roundLabel = *slotLabel
	}

	appendEvent(h.db, models.EventConfirmed, &match.ID, nil, &epoch, map[string]interface{}{
		"match_id":   match.ID,
		"match_code": match.Code,
		"epoch":      epoch,
		"saved_at":   now,
		"round":      roundLabel,
		"winner":     winner,
		"red_wins":   redWins,
		"white_wins": whiteWins,
	})

	slog.Info("round confirmed", "match_id", match.ID, "epoch", epoch,
		"winner", winner, "red_wins", redWins, "white_wins", whiteWins)

	middleware.JSONResponse(w, http.StatusOK, models.ConfirmResponse{
		EventKind: models.EventConfirmed,
		MatchID:   match.ID,
		Epoch:     epoch,
		ItemCount: len(items),
		Round:     models.RoundInfo{Slot: epoch, Label: roundLabel},
		Winner:    winner,
		RedWins:   redWins,
		WhiteWins: whiteWins,
	})
}

// Advance handles POST /control/advance
//
// Moves the round clock to the next epoch and reopens submissions. A
// corrupted stored epoch resets to 1 instead of failing. The win tally is
// untouched; only confirm and set-match recompute it.
func (h *ControlHandler) Advance(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, h.cfg) {
		return
	}

	state, err := loadRoundState(h.db)
	if err != nil {
		slog.Error("failed to load round state", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "state not found")
		return
	}

	fromEpoch := state.Epoch
	var toEpoch int64 = 1
	if fromEpoch >= 1 {
		toEpoch = fromEpoch + 1
	}

	_, err = h.db.Exec(`
		UPDATE round_state
		SET epoch = $1, accepting = TRUE, quorum_reached = FALSE, updated_at = $2
		WHERE id = 1
	`, toEpoch, time.Now())
	if err != nil {
		slog.Error("failed to advance round state", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to advance state")
		return
	}

	appendEvent(h.db, models.EventAdvanced, nil, nil, &toEpoch, map[string]interface{}{
		"from_epoch": fromEpoch,
		"to_epoch":   toEpoch,
	})

	slog.Info("round advanced", "from_epoch", fromEpoch, "to_epoch", toEpoch)

	middleware.JSONResponse(w, http.StatusOK, models.AdvanceResponse{
		EventKind: models.EventAdvanced,
		FromEpoch: fromEpoch,
		ToEpoch:   toEpoch,
	})
}

// SetMatch handles POST /control/set-match
//
// Points the round clock at a match by code, restoring the win tally from
// that match's existing snapshots so a resumed match shows correct
// standings. Epoch defaults to 1 unless a positive integer is given.
func (h *ControlHandler) SetMatch(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, h.cfg) {
		return
	}

	var req models.SetMatchRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	code := strings.TrimSpace(req.MatchCode)
	if code == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "match_code is required")
		return
	}

	epoch := req.Epoch
	if epoch < 1 {
		epoch = 1
	}

	match, err := loadMatchByCode(h.db, code)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "match not found")
		return
	}
	if err != nil {
		slog.Error("failed to load match", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	redWins, whiteWins, err := RecomputeWinTally(h.db, match.ID)
	if err != nil {
		slog.Error("failed to restore win tally", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to load snapshots for win tally")
		return
	}

	now := time.Now()
	_, err = h.db.Exec(`
		UPDATE round_state
		SET current_match_id = $1, epoch = $2, accepting = TRUE, quorum_reached = FALSE,
			red_wins = $3, white_wins = $4, wins_updated_at = $5, updated_at = $6
		WHERE id = 1
	`, match.ID, epoch, redWins, whiteWins, now, now)
	if err != nil {
		slog.Error("failed to set current match", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to set current match")
		return
	}

	appendEvent(h.db, models.EventSetMatch, &match.ID, nil, &epoch, map[string]interface{}{
		"match_id":   match.ID,
		"match_code": match.Code,
		"epoch":      epoch,
	})

	slog.Info("current match set", "match_id", match.ID, "match_code", match.Code,
		"epoch", epoch, "red_wins", redWins, "white_wins", whiteWins)

	middleware.JSONResponse(w, http.StatusOK, models.SetMatchResponse{
		Match:     matchInfo(match),
		Epoch:     epoch,
		Accepting: true,
		RedWins:   redWins,
		WhiteWins: whiteWins,
	})
}

// loadBallots returns all ballots at (match, epoch), one per judge.
func loadBallots(db *sql.DB, matchID string, epoch int64) ([]models.Ballot, error) {
	rows, err := db.Query(`
		SELECT id, judge_id, revision,
			red_work, red_app, red_total, red_flag,
			white_work, white_app, white_total, white_flag
		FROM ballots
		WHERE match_id = $1 AND epoch = $2
	`, matchID, epoch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ballots []models.Ballot
	for rows.Next() {
		b := models.Ballot{MatchID: matchID, Epoch: epoch}
		err := rows.Scan(&b.ID, &b.JudgeID, &b.Revision,
			&b.Red.Work, &b.Red.App, &b.Red.Total, &b.Red.Flag,
			&b.White.Work, &b.White.App, &b.White.Total, &b.White.Flag)
		if err != nil {
			return nil, err
		}
		ballots = append(ballots, b)
	}
	return ballots, rows.Err()
}

// judgeNames returns a display name per judge id.
func judgeNames(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT id, name FROM judges`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}
