// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the match progression engine.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Judge operations (require X-Judge-Token):

	POST /judge/ballots - Submit or revise a ballot
	GET  /judge/session - Resume client state (read-only)

Operator operations (require X-Admin-Secret):

	POST /control/confirm   - Freeze the round, decide winner
	POST /control/advance   - Move to the next epoch
	POST /control/set-match - Switch the active match

Registration (requires X-Admin-Secret):

	POST /admin/setup-match - Register match, judges, panel, tokens

# Handler Initialization

The router creates handler instances with dependency injection:

	submitHandler := handlers.NewSubmitHandler(db, cfg)
	controlHandler := handlers.NewControlHandler(db, cfg)
	setupHandler := handlers.NewSetupHandler(db, cfg)

All handlers receive the database connection and configuration.
*/
package router
