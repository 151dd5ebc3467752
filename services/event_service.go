package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JackRamey/MTGLeague/models"
	"github.com/JackRamey/MTGLeague/repositories"
	"github.com/jonboulle/clockwork"
)

type EventService interface {
	CreateEvent(ctx context.Context, leagueID int, name string) (*models.Event, error)
	GetEvent(ctx context.Context, id int) (*models.Event, error)
	ListEvents(ctx context.Context, leagueID int) ([]*models.Event, error)

	AddStage(ctx context.Context, eventID int, startDate, endDate time.Time) (*models.Stage, error)
	ListStages(ctx context.Context, eventID int) ([]*models.Stage, error)

	// StartDate and EndDate derive the event's effective date range from
	// its stages: min start date to max end date. An event with no
	// stages has no range and both fail with ErrEventNoStages.
	StartDate(ctx context.Context, eventID int) (time.Time, error)
	EndDate(ctx context.Context, eventID int) (time.Time, error)
	IsPast(ctx context.Context, eventID int) (bool, error)
	IsUpcoming(ctx context.Context, eventID int) (bool, error)
	InProgress(ctx context.Context, eventID int) (bool, error)

	// EventsByTiming filters a league's events by temporal class. Events
	// without stages are skipped: they have no date range to classify.
	// No ordering is guaranteed.
	EventsByTiming(ctx context.Context, leagueID int, timing models.EventTiming) ([]*models.Event, error)

	AddParticipant(ctx context.Context, eventID, userID int) (*models.Participant, error)
	IsParticipant(ctx context.Context, eventID, userID int) (bool, error)
	ListParticipants(ctx context.Context, eventID int) ([]*models.Participant, error)
}

type eventService struct {
	eventRepo       repositories.EventRepository
	stageRepo       repositories.StageRepository
	participantRepo repositories.ParticipantRepository
	leagueRepo      repositories.LeagueRepository
	clock           clockwork.Clock
}

func NewEventService(
	eventRepo repositories.EventRepository,
	stageRepo repositories.StageRepository,
	participantRepo repositories.ParticipantRepository,
	leagueRepo repositories.LeagueRepository,
	clock clockwork.Clock,
) EventService {
	return &eventService{
		eventRepo:       eventRepo,
		stageRepo:       stageRepo,
		participantRepo: participantRepo,
		leagueRepo:      leagueRepo,
		clock:           clock,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, leagueID int, name string) (*models.Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEventNameRequired
	}

	if _, err := s.leagueRepo.GetByID(ctx, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}

	event := &models.Event{Name: name, LeagueID: leagueID}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrEventLeagueInvalid) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, id int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, leagueID int) ([]*models.Event, error) {
	return s.eventRepo.ListByLeague(ctx, leagueID)
}

func (s *eventService) AddStage(ctx context.Context, eventID int, startDate, endDate time.Time) (*models.Stage, error) {
	startDate = truncateToDate(startDate)
	endDate = truncateToDate(endDate)
	if endDate.Before(startDate) {
		return nil, ErrStageInvalidDateRange
	}

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	stage := &models.Stage{
		EventID:   eventID,
		StartDate: startDate,
		EndDate:   endDate,
	}
	if err := s.stageRepo.Create(ctx, stage); err != nil {
		if errors.Is(err, repositories.ErrStageEventInvalid) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return stage, nil
}

func (s *eventService) ListStages(ctx context.Context, eventID int) ([]*models.Stage, error) {
	return s.stageRepo.ListByEvent(ctx, eventID)
}

func (s *eventService) StartDate(ctx context.Context, eventID int) (time.Time, error) {
	start, _, err := s.dateRange(ctx, eventID)
	return start, err
}

func (s *eventService) EndDate(ctx context.Context, eventID int) (time.Time, error) {
	_, end, err := s.dateRange(ctx, eventID)
	return end, err
}

func (s *eventService) IsPast(ctx context.Context, eventID int) (bool, error) {
	_, end, err := s.dateRange(ctx, eventID)
	if err != nil {
		return false, err
	}
	return !s.today().Before(end), nil
}

func (s *eventService) IsUpcoming(ctx context.Context, eventID int) (bool, error) {
	start, _, err := s.dateRange(ctx, eventID)
	if err != nil {
		return false, err
	}
	return !start.Before(s.today()), nil
}

func (s *eventService) InProgress(ctx context.Context, eventID int) (bool, error) {
	start, end, err := s.dateRange(ctx, eventID)
	if err != nil {
		return false, err
	}
	today := s.today()
	return !today.Before(start) && !end.Before(today), nil
}

func (s *eventService) EventsByTiming(ctx context.Context, leagueID int, timing models.EventTiming) ([]*models.Event, error) {
	events, err := s.eventRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.Event, 0, len(events))
	for _, event := range events {
		start, end, err := s.dateRange(ctx, event.ID)
		if err != nil {
			if errors.Is(err, ErrEventNoStages) {
				continue
			}
			return nil, err
		}

		today := s.today()
		var match bool
		switch timing {
		case models.EventUpcoming:
			match = !start.Before(today)
		case models.EventInProgress:
			match = !today.Before(start) && !end.Before(today)
		case models.EventPast:
			match = !today.Before(end)
		default:
			return nil, fmt.Errorf("%w: unknown event timing %q", ErrValidationFailed, timing)
		}
		if match {
			filtered = append(filtered, event)
		}
	}
	return filtered, nil
}

func (s *eventService) AddParticipant(ctx context.Context, eventID, userID int) (*models.Participant, error) {
	if _, err := s.participantRepo.FindByUserAndEvent(ctx, userID, eventID); err == nil {
		return nil, ErrParticipantConflict
	} else if !errors.Is(err, repositories.ErrParticipantNotFound) {
		return nil, err
	}

	p := &models.Participant{UserID: userID, EventID: eventID}
	if err := s.participantRepo.Create(ctx, p); err != nil {
		switch {
		case errors.Is(err, repositories.ErrParticipantConflict):
			return nil, ErrParticipantConflict
		case errors.Is(err, repositories.ErrParticipantUserInvalid):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrParticipantEventInvalid):
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *eventService) IsParticipant(ctx context.Context, eventID, userID int) (bool, error) {
	_, err := s.participantRepo.FindByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *eventService) ListParticipants(ctx context.Context, eventID int) ([]*models.Participant, error) {
	participants, err := s.participantRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for _, p := range participants {
		if p.User != nil {
			p.User.PasswordHash = ""
		}
	}
	return participants, nil
}

func (s *eventService) dateRange(ctx context.Context, eventID int) (time.Time, time.Time, error) {
	stages, err := s.stageRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if len(stages) == 0 {
		return time.Time{}, time.Time{}, ErrEventNoStages
	}

	start := truncateToDate(stages[0].StartDate)
	end := truncateToDate(stages[0].EndDate)
	for _, stage := range stages[1:] {
		if sd := truncateToDate(stage.StartDate); sd.Before(start) {
			start = sd
		}
		if ed := truncateToDate(stage.EndDate); ed.After(end) {
			end = ed
		}
	}
	return start, end, nil
}

func (s *eventService) today() time.Time {
	return truncateToDate(s.clock.Now())
}

func truncateToDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
