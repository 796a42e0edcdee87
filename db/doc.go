// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables and seeds the singleton
round_state row:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes,
and the state seed is guarded by the row's existence.

# Tables

The schema includes:

  - matches: Match metadata (code, name, round count, team names)
  - judges: Judge display names
  - judge_panel: Expected judge set per match
  - access_tokens: Bearer tokens resolving to a judge identity
  - round_state: Singleton state register (current match, epoch, accepting,
    quorum latch, win tally)
  - ballots: One live ballot per (match, judge, epoch)
  - round_snapshots: Frozen round results, replaceable per (match, epoch)
  - round_slots: Optional display slot/label per (match, epoch)
  - event_log: Append-only audit trail

# Relationships

	matches 1──* judge_panel *──1 judges
	matches 1──* ballots *──1 judges
	matches 1──* round_snapshots
	matches 1──* round_slots
	judges  1──* access_tokens

All foreign keys use ON DELETE CASCADE. round_state references the current
match by id without a constraint so that a match switch never fails on a
dangling reference.

# Portability

The SQL sticks to the subset shared by modernc.org/sqlite and PostgreSQL:
$N placeholders, TRUE/FALSE literals, and timestamps bound from Go instead
of database-side NOW().
*/
package db
