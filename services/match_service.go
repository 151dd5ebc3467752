package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/JackRamey/MTGLeague/live"
	"github.com/JackRamey/MTGLeague/models"
	"github.com/JackRamey/MTGLeague/repositories"
	"github.com/jonboulle/clockwork"
)

// winThreshold is the number of game wins that decides a best-of-three
// match.
const winThreshold = 2

type MatchService interface {
	CreateMatch(ctx context.Context, stageID, p1ID, p2ID int) (*models.Match, error)
	GetMatch(ctx context.Context, id int) (*models.Match, error)
	ListByStage(ctx context.Context, stageID int) ([]*models.Match, error)

	// SubmitResults records game counts for a match and resolves the
	// winner. It may be called repeatedly; every call replaces all
	// result fields. The match resolves to participant1 at two or more
	// p1 wins, otherwise to participant2 at two or more p2 wins,
	// otherwise it stays unresolved.
	SubmitResults(ctx context.Context, matchID, p1Wins, p2Wins, draws int) (*models.Match, error)
}

type matchService struct {
	db              *sql.DB
	matchRepo       repositories.MatchRepository
	stageRepo       repositories.StageRepository
	participantRepo repositories.ParticipantRepository
	hub             *live.Hub
	clock           clockwork.Clock
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	stageRepo repositories.StageRepository,
	participantRepo repositories.ParticipantRepository,
	hub *live.Hub,
	clock clockwork.Clock,
) MatchService {
	return &matchService{
		db:              db,
		matchRepo:       matchRepo,
		stageRepo:       stageRepo,
		participantRepo: participantRepo,
		hub:             hub,
		clock:           clock,
	}
}

func (s *matchService) CreateMatch(ctx context.Context, stageID, p1ID, p2ID int) (*models.Match, error) {
	if p1ID == p2ID {
		return nil, ErrMatchSameParticipant
	}

	stage, err := s.stageRepo.GetByID(ctx, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, err
	}

	// Both participants must be enrolled in the stage's event; a match
	// can never cross events.
	for _, pid := range []int{p1ID, p2ID} {
		p, err := s.participantRepo.FindByID(ctx, pid)
		if err != nil {
			if errors.Is(err, repositories.ErrParticipantNotFound) {
				return nil, ErrParticipantNotFound
			}
			return nil, err
		}
		if p.EventID != stage.EventID {
			return nil, ErrMatchParticipantMismatch
		}
	}

	match := &models.Match{
		StageID: stageID,
		P1ID:    p1ID,
		P2ID:    p2ID,
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

func (s *matchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) ListByStage(ctx context.Context, stageID int) ([]*models.Match, error) {
	return s.matchRepo.ListByStage(ctx, stageID)
}

func (s *matchService) SubmitResults(ctx context.Context, matchID, p1Wins, p2Wins, draws int) (*models.Match, error) {
	if p1Wins < 0 || p2Wins < 0 || draws < 0 {
		return nil, ErrInvalidResult
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	applyResults(match, p1Wins, p2Wins, draws, s.clock.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	if txErr = s.matchRepo.UpdateResults(ctx, tx, match); txErr != nil {
		return nil, txErr
	}
	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit match results: %w", txErr)
	}

	s.notifyEvent(ctx, match)

	return match, nil
}

// applyResults overwrites the match's result fields and resolves the
// winner. p1 is checked first, so if both sides somehow reach the
// threshold participant1 takes the match.
func applyResults(match *models.Match, p1Wins, p2Wins, draws int, resolvedAt time.Time) {
	match.P1Wins = p1Wins
	match.P2Wins = p2Wins
	match.Draws = draws
	match.ResolvedAt = &resolvedAt

	switch {
	case p1Wins >= winThreshold:
		match.WinnerID = &match.P1ID
		match.LoserID = &match.P2ID
	case p2Wins >= winThreshold:
		match.WinnerID = &match.P2ID
		match.LoserID = &match.P1ID
	default:
		// No decisive game yet, e.g. a 1-1 scoreline. The match stays
		// unresolved even if results were recorded before.
		match.WinnerID = nil
		match.LoserID = nil
	}
}

// notifyEvent pushes the updated match to the live room of its event.
func (s *matchService) notifyEvent(ctx context.Context, match *models.Match) {
	if s.hub == nil {
		return
	}
	stage, err := s.stageRepo.GetByID(ctx, match.StageID)
	if err != nil {
		return
	}
	s.hub.BroadcastToRoom(live.EventRoom(stage.EventID), live.Message{
		Type:    live.MessageMatchUpdated,
		Payload: match,
	})
}
