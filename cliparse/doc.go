// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3319)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: "sqlite" or "postgres" (default: sqlite)
  - AdminSecret: Operator shared secret (required)
  - TokenPrefix: Prefix for issued judge tokens (default: "khb-")

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-admin-secret Operator shared secret
	-token-prefix Judge token prefix

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	ADMIN_SECRET  → -admin-secret
	TOKEN_PREFIX  → -token-prefix

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - ADMIN_SECRET must be provided
  - DATABASE_TYPE must be sqlite or postgres
*/
package cliparse
