// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/blackstraysheep/khb-onlinesheet/cliparse"
	"github.com/blackstraysheep/khb-onlinesheet/handlers"
	"github.com/blackstraysheep/khb-onlinesheet/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	submitHandler := handlers.NewSubmitHandler(db, cfg)
	controlHandler := handlers.NewControlHandler(db, cfg)
	setupHandler := handlers.NewSetupHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Judge operations (require X-Judge-Token)
	mux.HandleFunc("POST /judge/ballots", middleware.WithLogging(submitHandler.SubmitBallot))
	mux.HandleFunc("GET /judge/session", middleware.WithLogging(submitHandler.Session))

	// Operator operations (require X-Admin-Secret)
	mux.HandleFunc("POST /control/confirm", middleware.WithLogging(controlHandler.Confirm))
	mux.HandleFunc("POST /control/advance", middleware.WithLogging(controlHandler.Advance))
	mux.HandleFunc("POST /control/set-match", middleware.WithLogging(controlHandler.SetMatch))

	// Match and panel registration (require X-Admin-Secret)
	mux.HandleFunc("POST /admin/setup-match", middleware.WithLogging(setupHandler.SetupMatch))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("khb-onlinesheet API v1"))
	})

	return mux
}
