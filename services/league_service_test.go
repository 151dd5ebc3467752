package services

import (
	"context"
	"testing"
	"time"

	"github.com/JackRamey/MTGLeague/models"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type leagueFixture struct {
	service     LeagueService
	leagues     *fakeLeagueRepo
	memberships *fakeMembershipRepo
	posts       *fakePostRepo
	users       *fakeUserRepo
}

func newLeagueFixture(t *testing.T) *leagueFixture {
	t.Helper()

	users := newFakeUserRepo()
	f := &leagueFixture{
		leagues:     newFakeLeagueRepo(),
		memberships: newFakeMembershipRepo(users),
		posts:       newFakePostRepo(),
		users:       users,
	}
	// League creation is transactional and needs a real database; the
	// paths under test here do not.
	f.service = NewLeagueService(nil, f.leagues, f.memberships, f.posts, nil, clockwork.NewFakeClockAt(date(2024, time.March, 15)))
	return f
}

func (f *leagueFixture) seedUser(t *testing.T, name string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *leagueFixture) seedLeague(t *testing.T, creatorID int) *models.League {
	t.Helper()
	league := &models.League{Name: "Friday Night Magic", CreatorID: creatorID}
	require.NoError(t, f.leagues.Create(context.Background(), nil, league))
	return league
}

func (f *leagueFixture) seedMembership(t *testing.T, userID, leagueID int, moderator, owner bool) *models.Membership {
	t.Helper()
	m := &models.Membership{UserID: userID, LeagueID: leagueID, Moderator: moderator, Owner: owner}
	require.NoError(t, f.memberships.Create(context.Background(), nil, m))
	return m
}

func TestAddMember(t *testing.T) {
	f := newLeagueFixture(t)
	creator := f.seedUser(t, "abbie")
	joiner := f.seedUser(t, "ben")
	league := f.seedLeague(t, creator.ID)

	m, err := f.service.AddMember(context.Background(), league.ID, joiner.ID)
	require.NoError(t, err)
	assert.Equal(t, joiner.ID, m.UserID)
	assert.False(t, m.Moderator)
	assert.False(t, m.Owner)

	_, err = f.service.AddMember(context.Background(), league.ID, joiner.ID)
	assert.ErrorIs(t, err, ErrMembershipConflict)
}

func TestRolePromotion(t *testing.T) {
	f := newLeagueFixture(t)
	creator := f.seedUser(t, "abbie")
	member := f.seedUser(t, "ben")
	league := f.seedLeague(t, creator.ID)
	f.seedMembership(t, member.ID, league.ID, false, false)

	t.Run("requires an existing membership", func(t *testing.T) {
		err := f.service.AddModerator(context.Background(), league.ID, 999)
		assert.ErrorIs(t, err, ErrMembershipNotFound)

		err = f.service.AddOwner(context.Background(), league.ID, 999)
		assert.ErrorIs(t, err, ErrMembershipNotFound)
	})

	t.Run("flags are mutually exclusive", func(t *testing.T) {
		require.NoError(t, f.service.AddModerator(context.Background(), league.ID, member.ID))
		m, err := f.memberships.FindByUserAndLeague(context.Background(), member.ID, league.ID)
		require.NoError(t, err)
		assert.True(t, m.Moderator)
		assert.False(t, m.Owner)

		require.NoError(t, f.service.AddOwner(context.Background(), league.ID, member.ID))
		m, err = f.memberships.FindByUserAndLeague(context.Background(), member.ID, league.ID)
		require.NoError(t, err)
		assert.False(t, m.Moderator)
		assert.True(t, m.Owner)
	})
}

func TestMemberRosters(t *testing.T) {
	f := newLeagueFixture(t)
	creator := f.seedUser(t, "abbie")
	moderator := f.seedUser(t, "ben")
	regular := f.seedUser(t, "cass")
	league := f.seedLeague(t, creator.ID)

	f.seedMembership(t, creator.ID, league.ID, false, true)
	f.seedMembership(t, moderator.ID, league.ID, true, false)
	f.seedMembership(t, regular.ID, league.ID, false, false)

	names := func(users []*models.User) []string {
		out := make([]string, len(users))
		for i, u := range users {
			out[i] = u.Name
		}
		return out
	}

	members, err := f.service.Members(context.Background(), league.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"abbie", "ben", "cass"}, names(members))
	for _, u := range members {
		assert.Empty(t, u.PasswordHash)
	}

	moderators, err := f.service.Moderators(context.Background(), league.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ben"}, names(moderators))

	owners, err := f.service.Owners(context.Background(), league.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"abbie"}, names(owners))
}

func TestEditableByUser(t *testing.T) {
	f := newLeagueFixture(t)
	creator := f.seedUser(t, "abbie")
	moderator := f.seedUser(t, "ben")
	regular := f.seedUser(t, "cass")
	league := f.seedLeague(t, creator.ID)

	f.seedMembership(t, moderator.ID, league.ID, true, false)
	f.seedMembership(t, regular.ID, league.ID, false, false)

	cases := []struct {
		name     string
		userID   int
		editable bool
	}{
		{"creator", creator.ID, true},
		{"moderator", moderator.ID, true},
		{"regular member", regular.ID, false},
		{"non-member", 999, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			editable, err := f.service.EditableByUser(context.Background(), league.ID, tc.userID)
			require.NoError(t, err)
			assert.Equal(t, tc.editable, editable)
		})
	}

	_, err := f.service.EditableByUser(context.Background(), 999, creator.ID)
	assert.ErrorIs(t, err, ErrLeagueNotFound)
}

func TestCreatePost(t *testing.T) {
	f := newLeagueFixture(t)
	creator := f.seedUser(t, "abbie")
	member := f.seedUser(t, "ben")
	league := f.seedLeague(t, creator.ID)
	f.seedMembership(t, member.ID, league.ID, false, false)

	t.Run("requires a title", func(t *testing.T) {
		_, err := f.service.CreatePost(context.Background(), league.ID, member.ID, "  ", "body")
		assert.ErrorIs(t, err, ErrPostTitleRequired)
	})

	t.Run("requires league membership", func(t *testing.T) {
		_, err := f.service.CreatePost(context.Background(), league.ID, 999, "Week 1 pairings", "body")
		assert.ErrorIs(t, err, ErrNotLeagueMember)
	})

	t.Run("creates the post", func(t *testing.T) {
		post, err := f.service.CreatePost(context.Background(), league.ID, member.ID, "Week 1 pairings", "See below.")
		require.NoError(t, err)
		assert.Equal(t, league.ID, post.LeagueID)
		assert.Equal(t, member.ID, post.AuthorID)
		assert.Equal(t, date(2024, time.March, 15), post.CreatedAt)

		posts, err := f.service.ListPosts(context.Background(), league.ID)
		require.NoError(t, err)
		require.Len(t, posts, 1)
	})
}
