package models

import "time"

// Match is a best-of-three contest between two participants of the same
// event. WinnerID and LoserID stay null until one side reaches two game
// wins; ResolvedAt is the time results were last recorded.
type Match struct {
	ID       int  `json:"id" db:"id"`
	StageID  int  `json:"stage_id" db:"stage_id"`
	P1ID     int  `json:"p1_id" db:"p1_id"`
	P2ID     int  `json:"p2_id" db:"p2_id"`
	WinnerID *int `json:"winner_id,omitempty" db:"winner_id"`
	LoserID  *int `json:"loser_id,omitempty" db:"loser_id"`

	P1Wins int `json:"p1_wins" db:"p1_wins"`
	P2Wins int `json:"p2_wins" db:"p2_wins"`
	Draws  int `json:"draws" db:"draws"`

	ResolvedAt *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
}

// Resolved reports whether a winner has been recorded.
func (m *Match) Resolved() bool {
	return m.WinnerID != nil
}
