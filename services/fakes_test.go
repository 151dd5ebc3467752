package services

import (
	"context"
	"sort"

	"github.com/JackRamey/MTGLeague/models"
	"github.com/JackRamey/MTGLeague/repositories"
)

// In-memory repository fakes backing the service tests. They mirror the
// Postgres implementations' error contracts: not-found and conflict
// sentinels come from the repositories package.

type fakeUserRepo struct {
	nextID int
	users  map[int]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
		if u.Name == user.Name {
			return repositories.ErrUserNameConflict
		}
	}
	user.ID = r.nextID
	r.nextID++
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeLeagueRepo struct {
	nextID  int
	leagues map[int]*models.League
}

func newFakeLeagueRepo() *fakeLeagueRepo {
	return &fakeLeagueRepo{nextID: 1, leagues: make(map[int]*models.League)}
}

func (r *fakeLeagueRepo) Create(ctx context.Context, exec repositories.SQLExecutor, league *models.League) error {
	for _, l := range r.leagues {
		if l.Name == league.Name {
			return repositories.ErrLeagueNameConflict
		}
	}
	league.ID = r.nextID
	r.nextID++
	cp := *league
	r.leagues[league.ID] = &cp
	return nil
}

func (r *fakeLeagueRepo) GetByID(ctx context.Context, id int) (*models.League, error) {
	l, ok := r.leagues[id]
	if !ok {
		return nil, repositories.ErrLeagueNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLeagueRepo) List(ctx context.Context) ([]*models.League, error) {
	out := make([]*models.League, 0, len(r.leagues))
	for _, l := range r.leagues {
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeLeagueRepo) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	l, ok := r.leagues[id]
	if !ok {
		return repositories.ErrLeagueNotFound
	}
	l.LogoKey = logoKey
	return nil
}

type fakeMembershipRepo struct {
	nextID      int
	memberships map[int]*models.Membership
	users       *fakeUserRepo
}

func newFakeMembershipRepo(users *fakeUserRepo) *fakeMembershipRepo {
	return &fakeMembershipRepo{nextID: 1, memberships: make(map[int]*models.Membership), users: users}
}

func (r *fakeMembershipRepo) Create(ctx context.Context, exec repositories.SQLExecutor, membership *models.Membership) error {
	for _, m := range r.memberships {
		if m.UserID == membership.UserID && m.LeagueID == membership.LeagueID {
			return repositories.ErrMembershipConflict
		}
	}
	membership.ID = r.nextID
	r.nextID++
	cp := *membership
	r.memberships[membership.ID] = &cp
	return nil
}

func (r *fakeMembershipRepo) FindByUserAndLeague(ctx context.Context, userID, leagueID int) (*models.Membership, error) {
	for _, m := range r.memberships {
		if m.UserID == userID && m.LeagueID == leagueID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repositories.ErrMembershipNotFound
}

func (r *fakeMembershipRepo) UpdateFlags(ctx context.Context, id int, moderator, owner bool) error {
	m, ok := r.memberships[id]
	if !ok {
		return repositories.ErrMembershipNotFound
	}
	m.Moderator = moderator
	m.Owner = owner
	return nil
}

func (r *fakeMembershipRepo) ListByLeague(ctx context.Context, leagueID int) ([]*models.Membership, error) {
	out := make([]*models.Membership, 0)
	for _, m := range r.memberships {
		if m.LeagueID != leagueID {
			continue
		}
		cp := *m
		if r.users != nil {
			if u, err := r.users.GetByID(ctx, m.UserID); err == nil {
				cp.User = u
			}
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMembershipRepo) ListLeagueIDsByUser(ctx context.Context, userID int) ([]int, error) {
	var ids []int
	for _, m := range r.memberships {
		if m.UserID == userID {
			ids = append(ids, m.LeagueID)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

type fakePostRepo struct {
	nextID int
	posts  []*models.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{nextID: 1}
}

func (r *fakePostRepo) Create(ctx context.Context, post *models.Post) error {
	post.ID = r.nextID
	r.nextID++
	cp := *post
	r.posts = append(r.posts, &cp)
	return nil
}

func (r *fakePostRepo) ListByLeague(ctx context.Context, leagueID int) ([]*models.Post, error) {
	out := make([]*models.Post, 0)
	for _, p := range r.posts {
		if p.LeagueID == leagueID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeEventRepo struct {
	nextID int
	events map[int]*models.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{nextID: 1, events: make(map[int]*models.Event)}
}

func (r *fakeEventRepo) Create(ctx context.Context, event *models.Event) error {
	event.ID = r.nextID
	r.nextID++
	cp := *event
	r.events[event.ID] = &cp
	return nil
}

func (r *fakeEventRepo) GetByID(ctx context.Context, id int) (*models.Event, error) {
	e, ok := r.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEventRepo) ListByLeague(ctx context.Context, leagueID int) ([]*models.Event, error) {
	out := make([]*models.Event, 0)
	for _, e := range r.events {
		if e.LeagueID == leagueID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeStageRepo struct {
	nextID int
	stages map[int]*models.Stage
}

func newFakeStageRepo() *fakeStageRepo {
	return &fakeStageRepo{nextID: 1, stages: make(map[int]*models.Stage)}
}

func (r *fakeStageRepo) Create(ctx context.Context, stage *models.Stage) error {
	stage.ID = r.nextID
	r.nextID++
	cp := *stage
	r.stages[stage.ID] = &cp
	return nil
}

func (r *fakeStageRepo) GetByID(ctx context.Context, id int) (*models.Stage, error) {
	s, ok := r.stages[id]
	if !ok {
		return nil, repositories.ErrStageNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeStageRepo) ListByEvent(ctx context.Context, eventID int) ([]*models.Stage, error) {
	out := make([]*models.Stage, 0)
	for _, s := range r.stages {
		if s.EventID == eventID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

type fakeParticipantRepo struct {
	nextID       int
	participants map[int]*models.Participant
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{nextID: 1, participants: make(map[int]*models.Participant)}
}

func (r *fakeParticipantRepo) Create(ctx context.Context, p *models.Participant) error {
	for _, existing := range r.participants {
		if existing.UserID == p.UserID && existing.EventID == p.EventID {
			return repositories.ErrParticipantConflict
		}
	}
	p.ID = r.nextID
	r.nextID++
	cp := *p
	r.participants[p.ID] = &cp
	return nil
}

func (r *fakeParticipantRepo) FindByID(ctx context.Context, id int) (*models.Participant, error) {
	p, ok := r.participants[id]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeParticipantRepo) FindByUserAndEvent(ctx context.Context, userID, eventID int) (*models.Participant, error) {
	for _, p := range r.participants {
		if p.UserID == userID && p.EventID == eventID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (r *fakeParticipantRepo) ListByEvent(ctx context.Context, eventID int) ([]*models.Participant, error) {
	out := make([]*models.Participant, 0)
	for _, p := range r.participants {
		if p.EventID == eventID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeParticipantRepo) ListByUser(ctx context.Context, userID int) ([]*models.Participant, error) {
	out := make([]*models.Participant, 0)
	for _, p := range r.participants {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeMatchRepo struct {
	nextID  int
	matches map[int]*models.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{nextID: 1, matches: make(map[int]*models.Match)}
}

func (r *fakeMatchRepo) Create(ctx context.Context, match *models.Match) error {
	match.ID = r.nextID
	r.nextID++
	cp := *match
	r.matches[match.ID] = &cp
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMatchRepo) UpdateResults(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	if _, ok := r.matches[match.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	cp := *match
	r.matches[match.ID] = &cp
	return nil
}

func (r *fakeMatchRepo) ListByStage(ctx context.Context, stageID int) ([]*models.Match, error) {
	out := make([]*models.Match, 0)
	for _, m := range r.matches {
		if m.StageID == stageID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMatchRepo) ListByParticipant(ctx context.Context, participantID int) ([]*models.Match, error) {
	out := make([]*models.Match, 0)
	for _, m := range r.matches {
		if m.P1ID == participantID || m.P2ID == participantID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
