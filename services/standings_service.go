package services

import (
	"context"
	"errors"
	"sort"

	"github.com/JackRamey/MTGLeague/models"
	"github.com/JackRamey/MTGLeague/repositories"
	"golang.org/x/sync/errgroup"
)

// standingsFanOutLimit caps how many participants are aggregated
// concurrently when building event or user standings.
const standingsFanOutLimit = 8

type StandingsService interface {
	// ParticipantMatches returns every match the participant appears in,
	// across all stages of the event.
	ParticipantMatches(ctx context.Context, participantID int) ([]*models.Match, error)

	// ParticipantStandings derives the participant's win/loss record.
	// Fails with ErrNoMatchesPlayed when the participant has no recorded
	// matches: the win percentage would be a division by zero.
	ParticipantStandings(ctx context.Context, participantID int) (*models.ParticipantStandings, error)

	MatchWinPercentage(ctx context.Context, participantID int) (float64, error)

	// OpponentMatchWinPercentage is the mean of each distinct opponent's
	// own match win percentage, computed over the games those opponents
	// played against everyone except this participant. Opponents with no
	// such games contribute zero.
	OpponentMatchWinPercentage(ctx context.Context, participantID int) (float64, error)

	// EventStandings derives a row per enrolled participant, sorted by
	// win percentage descending. Participants with no matches yet get an
	// all-zero row at the bottom.
	EventStandings(ctx context.Context, eventID int) ([]*models.ParticipantStandings, error)

	// UserStandings sums the aggregates over every participant record of
	// the user, across all events and leagues the user competes in.
	UserStandings(ctx context.Context, userID int) (*models.UserStandings, error)
}

type standingsService struct {
	matchRepo       repositories.MatchRepository
	participantRepo repositories.ParticipantRepository
}

func NewStandingsService(
	matchRepo repositories.MatchRepository,
	participantRepo repositories.ParticipantRepository,
) StandingsService {
	return &standingsService{
		matchRepo:       matchRepo,
		participantRepo: participantRepo,
	}
}

func (s *standingsService) ParticipantMatches(ctx context.Context, participantID int) ([]*models.Match, error) {
	if _, err := s.participant(ctx, participantID); err != nil {
		return nil, err
	}
	return s.matchRepo.ListByParticipant(ctx, participantID)
}

func (s *standingsService) ParticipantStandings(ctx context.Context, participantID int) (*models.ParticipantStandings, error) {
	p, err := s.participant(ctx, participantID)
	if err != nil {
		return nil, err
	}

	standings, err := s.deriveStandings(ctx, p)
	if err != nil {
		return nil, err
	}
	if standings.MatchesPlayed == 0 {
		return nil, ErrNoMatchesPlayed
	}

	opponentPct, err := s.opponentWinPercentage(ctx, participantID)
	if err != nil {
		return nil, err
	}
	standings.OpponentWinPercentage = opponentPct
	return standings, nil
}

func (s *standingsService) MatchWinPercentage(ctx context.Context, participantID int) (float64, error) {
	p, err := s.participant(ctx, participantID)
	if err != nil {
		return 0, err
	}

	standings, err := s.deriveStandings(ctx, p)
	if err != nil {
		return 0, err
	}
	if standings.MatchesPlayed == 0 {
		return 0, ErrNoMatchesPlayed
	}
	return standings.WinPercentage, nil
}

func (s *standingsService) OpponentMatchWinPercentage(ctx context.Context, participantID int) (float64, error) {
	if _, err := s.participant(ctx, participantID); err != nil {
		return 0, err
	}
	return s.opponentWinPercentage(ctx, participantID)
}

func (s *standingsService) EventStandings(ctx context.Context, eventID int) ([]*models.ParticipantStandings, error) {
	participants, err := s.participantRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	rows := make([]*models.ParticipantStandings, len(participants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(standingsFanOutLimit)
	for i, p := range participants {
		i, p := i, p
		g.Go(func() error {
			standings, err := s.deriveStandings(gctx, p)
			if err != nil {
				return err
			}
			if standings.MatchesPlayed > 0 {
				opponentPct, err := s.opponentWinPercentage(gctx, p.ID)
				if err != nil {
					return err
				}
				standings.OpponentWinPercentage = opponentPct
			}
			rows[i] = standings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Store order is unspecified, so the ranking sort is explicit here.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].WinPercentage != rows[j].WinPercentage {
			return rows[i].WinPercentage > rows[j].WinPercentage
		}
		if rows[i].MatchesWon != rows[j].MatchesWon {
			return rows[i].MatchesWon > rows[j].MatchesWon
		}
		return rows[i].ParticipantID < rows[j].ParticipantID
	})
	return rows, nil
}

func (s *standingsService) UserStandings(ctx context.Context, userID int) (*models.UserStandings, error) {
	participants, err := s.participantRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows := make([]*models.ParticipantStandings, len(participants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(standingsFanOutLimit)
	for i, p := range participants {
		i, p := i, p
		g.Go(func() error {
			standings, err := s.deriveStandings(gctx, p)
			if err != nil {
				return err
			}
			rows[i] = standings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := &models.UserStandings{UserID: userID}
	for _, row := range rows {
		total.MatchesPlayed += row.MatchesPlayed
		total.MatchesWon += row.MatchesWon
		total.MatchesLost += row.MatchesLost
	}
	if total.MatchesPlayed == 0 {
		return nil, ErrNoMatchesPlayed
	}
	total.WinPercentage = float64(total.MatchesWon) / float64(total.MatchesPlayed)
	return total, nil
}

// deriveStandings computes a participant's record from a single read of
// the participant's match set so the counts are mutually consistent.
func (s *standingsService) deriveStandings(ctx context.Context, p *models.Participant) (*models.ParticipantStandings, error) {
	matches, err := s.matchRepo.ListByParticipant(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	standings := &models.ParticipantStandings{
		ParticipantID: p.ID,
		UserID:        p.UserID,
		EventID:       p.EventID,
		MatchesPlayed: len(matches),
	}
	for _, m := range matches {
		if m.WinnerID != nil && *m.WinnerID == p.ID {
			standings.MatchesWon++
		}
		if m.LoserID != nil && *m.LoserID == p.ID {
			standings.MatchesLost++
		}
	}
	if standings.MatchesPlayed > 0 {
		standings.WinPercentage = float64(standings.MatchesWon) / float64(standings.MatchesPlayed)
	}
	return standings, nil
}

func (s *standingsService) opponentWinPercentage(ctx context.Context, participantID int) (float64, error) {
	matches, err := s.matchRepo.ListByParticipant(ctx, participantID)
	if err != nil {
		return 0, err
	}
	if len(matches) == 0 {
		return 0, ErrNoMatchesPlayed
	}

	opponents := make([]int, 0, len(matches))
	seen := make(map[int]struct{}, len(matches))
	for _, m := range matches {
		opponentID := m.P1ID
		if opponentID == participantID {
			opponentID = m.P2ID
		}
		if _, ok := seen[opponentID]; ok {
			continue
		}
		seen[opponentID] = struct{}{}
		opponents = append(opponents, opponentID)
	}

	var sum float64
	for _, opponentID := range opponents {
		opponentMatches, err := s.matchRepo.ListByParticipant(ctx, opponentID)
		if err != nil {
			return 0, err
		}

		// The opponent's record against everyone but this participant.
		var played, won int
		for _, m := range opponentMatches {
			if m.P1ID == participantID || m.P2ID == participantID {
				continue
			}
			played++
			if m.WinnerID != nil && *m.WinnerID == opponentID {
				won++
			}
		}
		if played > 0 {
			sum += float64(won) / float64(played)
		}
	}
	return sum / float64(len(opponents)), nil
}

func (s *standingsService) participant(ctx context.Context, participantID int) (*models.Participant, error) {
	p, err := s.participantRepo.FindByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return p, nil
}
