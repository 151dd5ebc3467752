package models

// ParticipantStandings is the derived win/loss record for one participant.
// Draws and unresolved matches account for the gap between
// MatchesWon+MatchesLost and MatchesPlayed.
type ParticipantStandings struct {
	ParticipantID int `json:"participant_id"`
	UserID        int `json:"user_id"`
	EventID       int `json:"event_id"`
	MatchesPlayed int `json:"matches_played"`
	MatchesWon    int `json:"matches_won"`
	MatchesLost   int `json:"matches_lost"`

	// WinPercentage is MatchesWon / MatchesPlayed, in [0,1]. Only valid
	// when MatchesPlayed > 0; the standings service rejects the
	// zero-match case instead of reporting 0 here.
	WinPercentage float64 `json:"win_percentage"`

	// OpponentWinPercentage is the mean of each distinct opponent's own
	// win percentage, excluding the games they played against this
	// participant.
	OpponentWinPercentage float64 `json:"opponent_win_percentage"`
}

// UserStandings aggregates a user's record across every event the user
// competes in.
type UserStandings struct {
	UserID        int     `json:"user_id"`
	MatchesPlayed int     `json:"matches_played"`
	MatchesWon    int     `json:"matches_won"`
	MatchesLost   int     `json:"matches_lost"`
	WinPercentage float64 `json:"win_percentage"`
}
