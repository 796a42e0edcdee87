// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the match progression
engine.

# Handler Types

Each handler is a struct with database and config dependencies:

  - SubmitHandler: Judge ballot intake and session resume
  - ControlHandler: Operator round operations (confirm, advance, set-match)
  - SetupHandler: Match/judge/panel/token registration

Handlers are created via constructor functions that accept *sql.DB and Config:

	submitHandler := handlers.NewSubmitHandler(db, cfg)

# Round Lifecycle

A match progresses one epoch at a time. Judges submit while the round is
accepting; the operator confirms once the panel has reached quorum:

	POST /judge/ballots     → SubmitBallot (upsert, revision counter)
	GET  /judge/session     → Session (read-only resume)
	POST /control/confirm   → Confirm (freeze snapshot, decide winner)
	POST /control/advance   → Advance (epoch+1, reopen submissions)
	POST /control/set-match → SetMatch (switch match, restore tally)
	POST /admin/setup-match → SetupMatch (register match and panel)

Judge operations require the X-Judge-Token header; operator operations
require X-Admin-Secret.

# Quorum

Submission triggers an advisory one-shot latch on the round state once
every expected judge has a ballot for the active epoch. Confirm never
trusts the latch: it recomputes quorum from the panel and the ballots on
record and rejects with expected/submitted counts when unmet.

# Winner and Tally

The winner rule is implemented in winner.go as a replaceable pure
function over the frozen ballot items:

	winner := handlers.DecideWinner(items)

The cumulative win tally is never maintained incrementally; confirm and
set-match both call RecomputeWinTally to rescan every snapshot for the
match, so replays and reordering self-heal.

# Event Log

Every mutating operation appends to the event_log table via appendEvent.
Append failures are logged and swallowed; primary state durability is
never held hostage to the audit trail.
*/
package handlers
