package models

// Actor is the capability view of "who is making this request". It is
// passed explicitly to permission checks instead of living in global
// session state.
type Actor interface {
	IsAdmin() bool
	IsAnonymous() bool
	IsMember(leagueID int) bool
}

// AuthenticatedActor wraps a loaded user together with the set of leagues
// the user belongs to.
type AuthenticatedActor struct {
	User    *User
	leagues map[int]struct{}
}

func NewAuthenticatedActor(user *User, leagueIDs []int) *AuthenticatedActor {
	leagues := make(map[int]struct{}, len(leagueIDs))
	for _, id := range leagueIDs {
		leagues[id] = struct{}{}
	}
	return &AuthenticatedActor{User: user, leagues: leagues}
}

func (a *AuthenticatedActor) IsAdmin() bool {
	return a.User != nil && a.User.Admin
}

func (a *AuthenticatedActor) IsAnonymous() bool { return false }

func (a *AuthenticatedActor) IsMember(leagueID int) bool {
	_, ok := a.leagues[leagueID]
	return ok
}

// AnonymousActor is the actor for unauthenticated requests.
type AnonymousActor struct{}

func (AnonymousActor) IsAdmin() bool             { return false }
func (AnonymousActor) IsAnonymous() bool         { return true }
func (AnonymousActor) IsMember(leagueID int) bool { return false }
