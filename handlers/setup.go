// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/blackstraysheep/khb-onlinesheet/auth"
	"github.com/blackstraysheep/khb-onlinesheet/cliparse"
	"github.com/blackstraysheep/khb-onlinesheet/middleware"
	"github.com/blackstraysheep/khb-onlinesheet/models"
)

type SetupHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewSetupHandler(db *sql.DB, cfg cliparse.Config) *SetupHandler {
	return &SetupHandler{db: db, cfg: cfg}
}

// SetupMatch handles POST /admin/setup-match
//
// Registers or refreshes a match and its judge panel in one idempotent
// call: the match is upserted by code, judges by name, panel membership is
// ensured, and each judge gets a bearer token (reusing an existing one, so
// re-running setup never invalidates handed-out tokens).
func (h *SetupHandler) SetupMatch(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, h.cfg) {
		return
	}

	var req models.SetupMatchRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	code := strings.TrimSpace(req.MatchCode)
	if code == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "match_code is required")
		return
	}
	name := strings.TrimSpace(req.MatchName)
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "match_name is required")
		return
	}
	if len(req.Judges) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "judges array is required")
		return
	}

	numRounds := req.NumRounds
	if numRounds < 1 {
		numRounds = 5
	}
	redTeam := strings.TrimSpace(req.RedTeamName)
	if redTeam == "" {
		redTeam = "Red"
	}
	whiteTeam := strings.TrimSpace(req.WhiteTeamName)
	if whiteTeam == "" {
		whiteTeam = "White"
	}

	now := time.Now()

	// Match upsert by code
	match, err := loadMatchByCode(h.db, code)
	switch {
	case err == sql.ErrNoRows:
		match = &models.Match{
			ID:            uuid.NewString(),
			Code:          code,
			Name:          name,
			NumRounds:     numRounds,
			RedTeamName:   redTeam,
			WhiteTeamName: whiteTeam,
		}
		_, err = h.db.Exec(`
			INSERT INTO matches (id, code, name, num_rounds, red_team_name, white_team_name, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, match.ID, code, name, numRounds, redTeam, whiteTeam, now, now)
		if err != nil {
			slog.Error("failed to insert match", "error", err, "match_code", code)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to insert match")
			return
		}
	case err != nil:
		slog.Error("failed to select match", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to select match")
		return
	default:
		match.Name = name
		match.NumRounds = numRounds
		match.RedTeamName = redTeam
		match.WhiteTeamName = whiteTeam
		_, err = h.db.Exec(`
			UPDATE matches SET name = $1, num_rounds = $2, red_team_name = $3, white_team_name = $4, updated_at = $5
			WHERE id = $6
		`, name, numRounds, redTeam, whiteTeam, now, match.ID)
		if err != nil {
			slog.Error("failed to update match", "error", err, "match_id", match.ID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to update match")
			return
		}
	}

	results := make([]models.SetupJudgeResult, 0, len(req.Judges))
	for _, j := range req.Judges {
		judgeName := strings.TrimSpace(j.Name)
		if judgeName == "" {
			continue
		}

		judgeID, err := h.ensureJudge(judgeName, now)
		if err != nil {
			slog.Error("failed to ensure judge", "error", err, "judge_name", judgeName)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to register judge")
			return
		}

		_, err = h.db.Exec(`
			INSERT INTO judge_panel (match_id, judge_id)
			VALUES ($1, $2)
			ON CONFLICT (match_id, judge_id) DO NOTHING
		`, match.ID, judgeID)
		if err != nil {
			slog.Error("failed to add judge to panel", "error", err, "judge_id", judgeID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to register panel")
			return
		}

		token, err := h.ensureToken(judgeID, now)
		if err != nil {
			slog.Error("failed to issue judge token", "error", err, "judge_id", judgeID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to issue token")
			return
		}

		results = append(results, models.SetupJudgeResult{
			JudgeID:   judgeID,
			JudgeName: judgeName,
			Token:     token,
			Role:      models.RoleJudge,
		})
	}

	if len(results) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "judges array is required")
		return
	}

	slog.Info("match setup complete", "match_id", match.ID, "match_code", code, "judges", len(results))

	middleware.JSONResponse(w, http.StatusOK, models.SetupMatchResponse{
		Match:  matchInfo(match),
		Judges: results,
	})
}

// ensureJudge returns the id of the judge with the given name, creating
// the row if absent. Names are unique.
func (h *SetupHandler) ensureJudge(name string, now time.Time) (string, error) {
	var id string
	err := h.db.QueryRow(`SELECT id FROM judges WHERE name = $1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}

	id = uuid.NewString()
	_, err = h.db.Exec(`
		INSERT INTO judges (id, name, created_at) VALUES ($1, $2, $3)
	`, id, name, now)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ensureToken returns an existing bearer token for the judge or issues a
// fresh one.
func (h *SetupHandler) ensureToken(judgeID string, now time.Time) (string, error) {
	var token string
	err := h.db.QueryRow(`
		SELECT token FROM access_tokens WHERE judge_id = $1
	`, judgeID).Scan(&token)
	if err == nil {
		return token, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}

	token, err = auth.GenerateJudgeToken(h.cfg.TokenPrefix)
	if err != nil {
		return "", err
	}
	_, err = h.db.Exec(`
		INSERT INTO access_tokens (token, judge_id, role, created_at)
		VALUES ($1, $2, $3, $4)
	`, token, judgeID, models.RoleJudge, now)
	if err != nil {
		return "", err
	}
	return token, nil
}
