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

type matchFixture struct {
	service      MatchService
	matches      *fakeMatchRepo
	stages       *fakeStageRepo
	participants *fakeParticipantRepo
	clock        *clockwork.FakeClock
}

func newMatchFixture(t *testing.T) *matchFixture {
	t.Helper()

	f := &matchFixture{
		matches:      newFakeMatchRepo(),
		stages:       newFakeStageRepo(),
		participants: newFakeParticipantRepo(),
		clock:        clockwork.NewFakeClockAt(date(2024, time.April, 5)),
	}
	// No transactional paths are exercised here, so the service gets no
	// database handle and no hub.
	f.service = NewMatchService(nil, f.matches, f.stages, f.participants, nil, f.clock)
	return f
}

func (f *matchFixture) seedStage(t *testing.T, eventID int) *models.Stage {
	t.Helper()
	stage := &models.Stage{
		EventID:   eventID,
		StartDate: date(2024, time.April, 1),
		EndDate:   date(2024, time.April, 14),
	}
	require.NoError(t, f.stages.Create(context.Background(), stage))
	return stage
}

func (f *matchFixture) seedParticipant(t *testing.T, userID, eventID int) *models.Participant {
	t.Helper()
	p := &models.Participant{UserID: userID, EventID: eventID}
	require.NoError(t, f.participants.Create(context.Background(), p))
	return p
}

func TestCreateMatch(t *testing.T) {
	f := newMatchFixture(t)
	stage := f.seedStage(t, 1)
	p1 := f.seedParticipant(t, 10, 1)
	p2 := f.seedParticipant(t, 11, 1)
	outsider := f.seedParticipant(t, 12, 2)

	t.Run("rejects a participant against themselves", func(t *testing.T) {
		_, err := f.service.CreateMatch(context.Background(), stage.ID, p1.ID, p1.ID)
		assert.ErrorIs(t, err, ErrMatchSameParticipant)
	})

	t.Run("requires an existing stage", func(t *testing.T) {
		_, err := f.service.CreateMatch(context.Background(), 999, p1.ID, p2.ID)
		assert.ErrorIs(t, err, ErrStageNotFound)
	})

	t.Run("rejects participants from another event", func(t *testing.T) {
		_, err := f.service.CreateMatch(context.Background(), stage.ID, p1.ID, outsider.ID)
		assert.ErrorIs(t, err, ErrMatchParticipantMismatch)
	})

	t.Run("creates an unresolved match", func(t *testing.T) {
		match, err := f.service.CreateMatch(context.Background(), stage.ID, p1.ID, p2.ID)
		require.NoError(t, err)
		assert.Equal(t, stage.ID, match.StageID)
		assert.Equal(t, p1.ID, match.P1ID)
		assert.Equal(t, p2.ID, match.P2ID)
		assert.Nil(t, match.WinnerID)
		assert.Nil(t, match.LoserID)
		assert.False(t, match.Resolved())
	})
}

func TestSubmitResultsValidation(t *testing.T) {
	f := newMatchFixture(t)

	for _, counts := range [][3]int{{-1, 0, 0}, {0, -1, 0}, {0, 0, -1}} {
		_, err := f.service.SubmitResults(context.Background(), 1, counts[0], counts[1], counts[2])
		assert.ErrorIs(t, err, ErrInvalidResult)
	}

	_, err := f.service.SubmitResults(context.Background(), 999, 2, 0, 0)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestApplyResults(t *testing.T) {
	resolvedAt := date(2024, time.April, 5)

	cases := []struct {
		name     string
		p1Wins   int
		p2Wins   int
		draws    int
		winnerP1 bool
		winnerP2 bool
	}{
		{"p1 sweeps", 2, 0, 0, true, false},
		{"p2 sweeps", 0, 2, 0, false, true},
		{"p1 takes three games", 2, 1, 0, true, false},
		{"split with draw", 1, 1, 1, false, false},
		{"no games", 0, 0, 0, false, false},
		{"p1 priority when both reach threshold", 2, 2, 0, true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			match := &models.Match{ID: 1, StageID: 1, P1ID: 10, P2ID: 20}
			applyResults(match, tc.p1Wins, tc.p2Wins, tc.draws, resolvedAt)

			assert.Equal(t, tc.p1Wins, match.P1Wins)
			assert.Equal(t, tc.p2Wins, match.P2Wins)
			assert.Equal(t, tc.draws, match.Draws)
			require.NotNil(t, match.ResolvedAt)
			assert.Equal(t, resolvedAt, *match.ResolvedAt)

			switch {
			case tc.winnerP1:
				require.NotNil(t, match.WinnerID)
				require.NotNil(t, match.LoserID)
				assert.Equal(t, match.P1ID, *match.WinnerID)
				assert.Equal(t, match.P2ID, *match.LoserID)
			case tc.winnerP2:
				require.NotNil(t, match.WinnerID)
				require.NotNil(t, match.LoserID)
				assert.Equal(t, match.P2ID, *match.WinnerID)
				assert.Equal(t, match.P1ID, *match.LoserID)
			default:
				assert.Nil(t, match.WinnerID)
				assert.Nil(t, match.LoserID)
			}
		})
	}

	t.Run("resubmission clears a previous winner", func(t *testing.T) {
		match := &models.Match{ID: 1, StageID: 1, P1ID: 10, P2ID: 20}
		applyResults(match, 2, 0, 0, resolvedAt)
		require.NotNil(t, match.WinnerID)

		applyResults(match, 1, 1, 0, resolvedAt)
		assert.Nil(t, match.WinnerID)
		assert.Nil(t, match.LoserID)
		assert.Equal(t, 1, match.P1Wins)
		assert.Equal(t, 1, match.P2Wins)
	})

	t.Run("resubmission replaces rather than accumulates", func(t *testing.T) {
		match := &models.Match{ID: 1, StageID: 1, P1ID: 10, P2ID: 20}
		applyResults(match, 2, 1, 0, resolvedAt)
		applyResults(match, 2, 0, 1, resolvedAt)

		assert.Equal(t, 2, match.P1Wins)
		assert.Equal(t, 0, match.P2Wins)
		assert.Equal(t, 1, match.Draws)
	})
}
