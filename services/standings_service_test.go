package services

import (
	"context"
	"testing"

	"github.com/JackRamey/MTGLeague/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type standingsFixture struct {
	service      StandingsService
	matches      *fakeMatchRepo
	participants *fakeParticipantRepo
}

func newStandingsFixture(t *testing.T) *standingsFixture {
	t.Helper()

	f := &standingsFixture{
		matches:      newFakeMatchRepo(),
		participants: newFakeParticipantRepo(),
	}
	f.service = NewStandingsService(f.matches, f.participants)
	return f
}

func (f *standingsFixture) seedParticipant(t *testing.T, userID, eventID int) *models.Participant {
	t.Helper()
	p := &models.Participant{UserID: userID, EventID: eventID}
	require.NoError(t, f.participants.Create(context.Background(), p))
	return p
}

// seedResolvedMatch records a finished match between two participants.
// winnerID must be one of the two sides.
func (f *standingsFixture) seedResolvedMatch(t *testing.T, p1ID, p2ID, winnerID int) *models.Match {
	t.Helper()
	loserID := p1ID
	if winnerID == p1ID {
		loserID = p2ID
	}
	match := &models.Match{
		StageID:  1,
		P1ID:     p1ID,
		P2ID:     p2ID,
		WinnerID: &winnerID,
		LoserID:  &loserID,
	}
	require.NoError(t, f.matches.Create(context.Background(), match))
	return match
}

func (f *standingsFixture) seedUnresolvedMatch(t *testing.T, p1ID, p2ID int) *models.Match {
	t.Helper()
	match := &models.Match{StageID: 1, P1ID: p1ID, P2ID: p2ID, P1Wins: 1, P2Wins: 1}
	require.NoError(t, f.matches.Create(context.Background(), match))
	return match
}

func TestParticipantStandings(t *testing.T) {
	f := newStandingsFixture(t)
	p1 := f.seedParticipant(t, 101, 1)
	p2 := f.seedParticipant(t, 102, 1)
	p3 := f.seedParticipant(t, 103, 1)
	idle := f.seedParticipant(t, 104, 1)

	f.seedResolvedMatch(t, p1.ID, p2.ID, p1.ID)
	f.seedResolvedMatch(t, p1.ID, p3.ID, p1.ID)
	f.seedResolvedMatch(t, p2.ID, p3.ID, p2.ID)

	t.Run("unknown participant", func(t *testing.T) {
		_, err := f.service.ParticipantStandings(context.Background(), 999)
		assert.ErrorIs(t, err, ErrParticipantNotFound)
	})

	t.Run("no matches played", func(t *testing.T) {
		_, err := f.service.ParticipantStandings(context.Background(), idle.ID)
		assert.ErrorIs(t, err, ErrNoMatchesPlayed)

		_, err = f.service.MatchWinPercentage(context.Background(), idle.ID)
		assert.ErrorIs(t, err, ErrNoMatchesPlayed)
	})

	t.Run("derives the record", func(t *testing.T) {
		standings, err := f.service.ParticipantStandings(context.Background(), p2.ID)
		require.NoError(t, err)
		assert.Equal(t, p2.ID, standings.ParticipantID)
		assert.Equal(t, 102, standings.UserID)
		assert.Equal(t, 2, standings.MatchesPlayed)
		assert.Equal(t, 1, standings.MatchesWon)
		assert.Equal(t, 1, standings.MatchesLost)
		assert.InDelta(t, 0.5, standings.WinPercentage, 1e-9)
	})

	t.Run("win percentage", func(t *testing.T) {
		pct, err := f.service.MatchWinPercentage(context.Background(), p1.ID)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, pct, 1e-9)

		pct, err = f.service.MatchWinPercentage(context.Background(), p3.ID)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, pct, 1e-9)
	})
}

func TestOpponentMatchWinPercentage(t *testing.T) {
	f := newStandingsFixture(t)
	p1 := f.seedParticipant(t, 101, 1)
	p2 := f.seedParticipant(t, 102, 1)
	p3 := f.seedParticipant(t, 103, 1)
	idle := f.seedParticipant(t, 104, 1)

	f.seedResolvedMatch(t, p1.ID, p2.ID, p1.ID)
	f.seedResolvedMatch(t, p1.ID, p3.ID, p1.ID)
	f.seedResolvedMatch(t, p2.ID, p3.ID, p2.ID)

	t.Run("excludes games against the participant", func(t *testing.T) {
		// p1's opponents are p2 and p3. Leaving out their games against
		// p1, p2 is 1-0 and p3 is 0-1, so the mean is 0.5.
		pct, err := f.service.OpponentMatchWinPercentage(context.Background(), p1.ID)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, pct, 1e-9)
	})

	t.Run("opponent with no other games contributes zero", func(t *testing.T) {
		g := newStandingsFixture(t)
		a := g.seedParticipant(t, 201, 1)
		b := g.seedParticipant(t, 202, 1)
		g.seedResolvedMatch(t, a.ID, b.ID, a.ID)

		pct, err := g.service.OpponentMatchWinPercentage(context.Background(), a.ID)
		require.NoError(t, err)
		assert.Zero(t, pct)
	})

	t.Run("no matches played", func(t *testing.T) {
		_, err := f.service.OpponentMatchWinPercentage(context.Background(), idle.ID)
		assert.ErrorIs(t, err, ErrNoMatchesPlayed)
	})

	t.Run("repeat pairings count the opponent once", func(t *testing.T) {
		g := newStandingsFixture(t)
		a := g.seedParticipant(t, 301, 1)
		b := g.seedParticipant(t, 302, 1)
		c := g.seedParticipant(t, 303, 1)
		g.seedResolvedMatch(t, a.ID, b.ID, a.ID)
		g.seedResolvedMatch(t, b.ID, a.ID, b.ID)
		g.seedResolvedMatch(t, b.ID, c.ID, b.ID)

		// a's only distinct opponent is b, who is 1-0 outside their
		// pairing.
		pct, err := g.service.OpponentMatchWinPercentage(context.Background(), a.ID)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, pct, 1e-9)
	})
}

func TestEventStandings(t *testing.T) {
	f := newStandingsFixture(t)
	p1 := f.seedParticipant(t, 101, 1)
	p2 := f.seedParticipant(t, 102, 1)
	p3 := f.seedParticipant(t, 103, 1)
	idle := f.seedParticipant(t, 104, 1)

	f.seedResolvedMatch(t, p1.ID, p2.ID, p1.ID)
	f.seedResolvedMatch(t, p1.ID, p3.ID, p1.ID)
	f.seedResolvedMatch(t, p2.ID, p3.ID, p2.ID)

	rows, err := f.service.EventStandings(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, p1.ID, rows[0].ParticipantID)
	assert.Equal(t, p2.ID, rows[1].ParticipantID)
	// p3 and idle both sit at zero; the lower participant ID ranks first.
	assert.Equal(t, p3.ID, rows[2].ParticipantID)
	assert.Equal(t, idle.ID, rows[3].ParticipantID)

	assert.Zero(t, rows[3].MatchesPlayed)
	assert.Zero(t, rows[3].WinPercentage)

	empty, err := f.service.EventStandings(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEventStandingsCountsUnresolvedMatches(t *testing.T) {
	f := newStandingsFixture(t)
	p1 := f.seedParticipant(t, 101, 1)
	p2 := f.seedParticipant(t, 102, 1)
	f.seedUnresolvedMatch(t, p1.ID, p2.ID)

	rows, err := f.service.EventStandings(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, 1, row.MatchesPlayed)
		assert.Zero(t, row.MatchesWon)
		assert.Zero(t, row.MatchesLost)
		assert.Zero(t, row.WinPercentage)
	}
}

func TestUserStandings(t *testing.T) {
	f := newStandingsFixture(t)

	// User 101 competes in two events.
	p1 := f.seedParticipant(t, 101, 1)
	p2 := f.seedParticipant(t, 102, 1)
	p3 := f.seedParticipant(t, 101, 2)
	p4 := f.seedParticipant(t, 103, 2)

	f.seedResolvedMatch(t, p1.ID, p2.ID, p1.ID)
	f.seedResolvedMatch(t, p1.ID, p2.ID, p1.ID)
	f.seedResolvedMatch(t, p3.ID, p4.ID, p4.ID)

	standings, err := f.service.UserStandings(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, 101, standings.UserID)
	assert.Equal(t, 3, standings.MatchesPlayed)
	assert.Equal(t, 2, standings.MatchesWon)
	assert.Equal(t, 1, standings.MatchesLost)
	assert.InDelta(t, 2.0/3.0, standings.WinPercentage, 1e-9)

	_, err = f.service.UserStandings(context.Background(), 102)
	require.NoError(t, err)

	_, err = f.service.UserStandings(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNoMatchesPlayed)
}
