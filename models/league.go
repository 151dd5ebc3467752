package models

import "time"

type League struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	CreatorID    int       `json:"creator_id" db:"creator_id"`
	CreationDate time.Time `json:"creation_date" db:"creation_date"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`

	// Optional linked data, populated by the service layer.
	Creator *User `json:"creator,omitempty" db:"-"`
}

type Membership struct {
	ID        int  `json:"id" db:"id"`
	UserID    int  `json:"user_id" db:"user_id"`
	LeagueID  int  `json:"league_id" db:"league_id"`
	Moderator bool `json:"moderator" db:"moderator"`
	Owner     bool `json:"owner" db:"owner"`

	User *User `json:"user,omitempty" db:"-"`
}

type Post struct {
	ID        int       `json:"id" db:"id"`
	LeagueID  int       `json:"league_id" db:"league_id"`
	AuthorID  int       `json:"author_id" db:"author_id"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Author *User `json:"author,omitempty" db:"-"`
}
