package models

import "time"

// EventTiming classifies an event relative to the current date, derived
// from the date range of its stages. The bounds are inclusive on both
// sides, so an event whose last stage ends today is both in progress and
// past.
type EventTiming string

const (
	EventUpcoming   EventTiming = "upcoming"
	EventInProgress EventTiming = "in_progress"
	EventPast       EventTiming = "past"
)

type Event struct {
	ID       int    `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	LeagueID int    `json:"league_id" db:"league_id"`

	Stages       []Stage       `json:"stages,omitempty" db:"-"`
	Participants []Participant `json:"participants,omitempty" db:"-"`
}

// Stage is a dated phase of an event. StartDate and EndDate are date
// precision; StartDate <= EndDate.
type Stage struct {
	ID        int       `json:"id" db:"id"`
	EventID   int       `json:"event_id" db:"event_id"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`
}

// Participant is one user's enrollment in one event.
type Participant struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	EventID   int       `json:"event_id" db:"event_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}
