package models

import "time"

// Winner constants
const (
	WinnerRed   = "red"
	WinnerWhite = "white"
	WinnerDraw  = "draw"
)

// Event kind constants
const (
	EventSubmit    = "submit"
	EventRevise    = "revise"
	EventQuorum    = "quorum_reached"
	EventConfirmed = "round_confirmed"
	EventAdvanced  = "round_advanced"
	EventSetMatch  = "set_match"
)

// Role constants
const (
	RoleJudge = "judge"
)

// Request types

// Side carries one team's scores on a ballot.
type Side struct {
	Work  float64 `json:"work"`
	App   float64 `json:"app"`
	Total float64 `json:"total"`
	Flag  bool    `json:"flag"`
}

type SubmitBallotRequest struct {
	Red   Side `json:"red"`
	White Side `json:"white"`
}

type ConfirmRequest struct {
	MatchCode string `json:"match_code"`
}

type SetMatchRequest struct {
	MatchCode string `json:"match_code"`
	Epoch     int64  `json:"epoch,omitempty"`
}

type SetupJudgeInput struct {
	Name string `json:"name"`
}

type SetupMatchRequest struct {
	MatchCode     string            `json:"match_code"`
	MatchName     string            `json:"match_name"`
	NumRounds     int64             `json:"num_rounds,omitempty"`
	RedTeamName   string            `json:"red_team_name,omitempty"`
	WhiteTeamName string            `json:"white_team_name,omitempty"`
	Judges        []SetupJudgeInput `json:"judges"`
}

// Response types

type SubmitBallotResponse struct {
	EventKind string    `json:"event_kind"`
	Revision  int64     `json:"revision"`
	Match     MatchInfo `json:"match"`
	Epoch     int64     `json:"epoch"`
	Round     RoundInfo `json:"round"`
}

type SessionResponse struct {
	Match     MatchInfo      `json:"match"`
	Epoch     int64          `json:"epoch"`
	Accepting bool           `json:"accepting"`
	JudgeID   string         `json:"judge_id"`
	JudgeName *string        `json:"judge_name"`
	Round     RoundInfo      `json:"round"`
	Ballot    *BallotPayload `json:"ballot"`
}

// BallotPayload is the previously submitted scores returned on session resume.
type BallotPayload struct {
	Red      Side  `json:"red"`
	White    Side  `json:"white"`
	Revision int64 `json:"revision"`
}

type ConfirmResponse struct {
	EventKind string    `json:"event_kind"`
	MatchID   string    `json:"match_id"`
	Epoch     int64     `json:"epoch"`
	ItemCount int       `json:"item_count"`
	Round     RoundInfo `json:"round"`
	Winner    string    `json:"winner"`
	RedWins   int64     `json:"red_wins"`
	WhiteWins int64     `json:"white_wins"`
}

type AdvanceResponse struct {
	EventKind string `json:"event_kind"`
	FromEpoch int64  `json:"from_epoch"`
	ToEpoch   int64  `json:"to_epoch"`
}

type SetMatchResponse struct {
	Match     MatchInfo `json:"match"`
	Epoch     int64     `json:"epoch"`
	Accepting bool      `json:"accepting"`
	RedWins   int64     `json:"red_wins"`
	WhiteWins int64     `json:"white_wins"`
}

type SetupJudgeResult struct {
	JudgeID   string `json:"judge_id"`
	JudgeName string `json:"judge_name"`
	Token     string `json:"token"`
	Role      string `json:"role"`
}

type SetupMatchResponse struct {
	Match  MatchInfo          `json:"match"`
	Judges []SetupJudgeResult `json:"judges"`
}

// Domain types

type Match struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	NumRounds     int64     `json:"num_rounds"`
	RedTeamName   string    `json:"red_team_name"`
	WhiteTeamName string    `json:"white_team_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// MatchInfo is the match summary embedded in judge/operator responses.
type MatchInfo struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	RedTeamName   string `json:"red_team_name,omitempty"`
	WhiteTeamName string `json:"white_team_name,omitempty"`
	NumRounds     int64  `json:"num_rounds,omitempty"`
}

// RoundInfo is the display position of the current round within a match.
// Slot mirrors the epoch; Label is derived from the match's round count.
type RoundInfo struct {
	Slot  int64  `json:"slot"`
	Label string `json:"label"`
}

type Judge struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Ballot struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"match_id"`
	JudgeID   string    `json:"judge_id"`
	Epoch     int64     `json:"epoch"`
	Revision  int64     `json:"revision"`
	Red       Side      `json:"red"`
	White     Side      `json:"white"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SideResult is one team's scores as frozen into a snapshot.
type SideResult struct {
	WorkPoint float64 `json:"work_point"`
	AppPoint  float64 `json:"app_point"`
	Total     float64 `json:"total"`
	Flag      bool    `json:"flag"`
}

// SnapshotItem is a single judge's ballot enriched with display names.
type SnapshotItem struct {
	JudgeID   string     `json:"judge_id"`
	JudgeName *string    `json:"judge_name"`
	MatchID   string     `json:"match_id"`
	MatchCode string     `json:"match_code"`
	MatchName string     `json:"match_name"`
	Epoch     int64      `json:"epoch"`
	Revision  int64      `json:"revision"`
	Red       SideResult `json:"red"`
	White     SideResult `json:"white"`
}

// Snapshot is the frozen record of one round, replaceable per (match, epoch).
type Snapshot struct {
	Match   MatchInfo      `json:"match"`
	Epoch   int64          `json:"epoch"`
	Round   SnapshotRound  `json:"round"`
	SavedAt time.Time      `json:"saved_at"`
	Items   []SnapshotItem `json:"items"`
}

// SnapshotRound carries optional slot metadata; both fields are null when
// no round_slots row exists for the (match, epoch).
type SnapshotRound struct {
	Slot  *int64  `json:"slot"`
	Label *string `json:"label"`
}

// Error response

type ErrorResponse struct {
	Error  string      `json:"error"`
	Detail interface{} `json:"detail,omitempty"`
}

// QuorumDetail reports submission progress when confirm is rejected.
type QuorumDetail struct {
	ExpectedCount  int `json:"expected_count"`
	SubmittedCount int `json:"submitted_count"`
}
