// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the KHB online scoresheet server.

The server coordinates multi-round red-vs-white matches judged by a fixed
panel: judges submit per-round ballots, the engine detects panel quorum,
freezes rounds into snapshots with a computed winner, and keeps a running
win tally that an operator can advance or switch between matches.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=scores.db ADMIN_SECRET=... go run main.go

Or with flags:

	go run main.go -p 3319 -d scores.db -admin-secret ...

A .env file in the working directory is loaded at startup if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): Database connection string
  - ADMIN_SECRET (-admin-secret): Operator shared secret

Optional settings:

  - PORT (-p): Server port (default: 3319)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - TOKEN_PREFIX (-token-prefix): Judge token prefix (default: "khb-")

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (ballot intake, round control, setup)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response and domain types
  - auth: Token generation and admin secret checking
  - db: Schema creation and state seeding
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
