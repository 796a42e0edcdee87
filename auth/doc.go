// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides token generation and admin secret checking.

# Judge Tokens

Judge tokens are random 16-byte secrets with a recognizable prefix:

	token, err := auth.GenerateJudgeToken("khb-")

Tokens are hex encoded and handed out once at match setup. The server
resolves them to a judge identity via the access_tokens table.

# Admin Secret

Operator endpoints are gated by a single shared secret compared in
constant time:

	if err := auth.CheckAdminSecret(provided, cfg.AdminSecret); err != nil {
		// auth.ErrSecretNotSet    -> server misconfiguration
		// auth.ErrInvalidAdminSecret -> reject the request
	}

Whitespace is trimmed from both sides before comparison, matching how
secrets tend to arrive from copy-paste and env files.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
