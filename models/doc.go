// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - SubmitBallotRequest: red/white sides (work, app, total, flag)
  - ConfirmRequest: match_code
  - SetMatchRequest: match_code, optional epoch
  - SetupMatchRequest: match_code, match_name, teams, judges

# Response Types

Types for JSON responses:

  - SubmitBallotResponse: event_kind, revision, match, epoch, round
  - SessionResponse: match, epoch, accepting, judge, round, ballot-or-null
  - ConfirmResponse: match_id, epoch, item_count, round, winner, tallies
  - AdvanceResponse: event_kind, from_epoch, to_epoch
  - SetMatchResponse: match, epoch, accepting, tallies
  - SetupMatchResponse: match, judges with issued tokens
  - ErrorResponse: error, optional detail

# Domain Types

Internal data structures:

  - Match: code, name, round count, team names
  - Judge: display name
  - Ballot: one judge's scores per (match, epoch), revision counter
  - Snapshot / SnapshotItem: frozen round state with computed winner
  - QuorumDetail: expected/submitted counts on a rejected confirm

# Constants

Winners:

	WinnerRed   = "red"
	WinnerWhite = "white"
	WinnerDraw  = "draw"

Event kinds:

	EventSubmit    = "submit"
	EventRevise    = "revise"
	EventQuorum    = "quorum_reached"
	EventConfirmed = "round_confirmed"
	EventAdvanced  = "round_advanced"
	EventSetMatch  = "set_match"

Roles:

	RoleJudge = "judge"
*/
package models
