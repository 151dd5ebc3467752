package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JackRamey/MTGLeague/models"
	"github.com/lib/pq"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrEventLeagueInvalid = errors.New("event league conflict or invalid")
	ErrStageNotFound      = errors.New("stage not found")
	ErrStageEventInvalid  = errors.New("stage event conflict or invalid")
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	ListByLeague(ctx context.Context, leagueID int) ([]*models.Event, error)
}

type StageRepository interface {
	Create(ctx context.Context, stage *models.Stage) error
	GetByID(ctx context.Context, id int) (*models.Stage, error)
	ListByEvent(ctx context.Context, eventID int) ([]*models.Stage, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (name, league_id)
		VALUES ($1, $2)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, event.Name, event.LeagueID).Scan(&event.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "events_league_id_fkey" {
				return ErrEventLeagueInvalid
			}
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `SELECT id, name, league_id FROM events WHERE id = $1`

	event := &models.Event{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&event.ID, &event.Name, &event.LeagueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *postgresEventRepository) ListByLeague(ctx context.Context, leagueID int) ([]*models.Event, error) {
	query := `SELECT id, name, league_id FROM events WHERE league_id = $1`

	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		event := &models.Event{}
		if err := rows.Scan(&event.ID, &event.Name, &event.LeagueID); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

type postgresStageRepository struct {
	db *sql.DB
}

func NewPostgresStageRepository(db *sql.DB) StageRepository {
	return &postgresStageRepository{db: db}
}

func (r *postgresStageRepository) Create(ctx context.Context, stage *models.Stage) error {
	query := `
		INSERT INTO stages (event_id, start_date, end_date)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		stage.EventID,
		stage.StartDate,
		stage.EndDate,
	).Scan(&stage.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "stages_event_id_fkey" {
				return ErrStageEventInvalid
			}
		}
		return fmt.Errorf("failed to create stage: %w", err)
	}
	return nil
}

func (r *postgresStageRepository) GetByID(ctx context.Context, id int) (*models.Stage, error) {
	query := `SELECT id, event_id, start_date, end_date FROM stages WHERE id = $1`

	stage := &models.Stage{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&stage.ID,
		&stage.EventID,
		&stage.StartDate,
		&stage.EndDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStageNotFound
		}
		return nil, err
	}
	return stage, nil
}

func (r *postgresStageRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.Stage, error) {
	query := `
		SELECT id, event_id, start_date, end_date
		FROM stages
		WHERE event_id = $1
		ORDER BY start_date ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stages := make([]*models.Stage, 0)
	for rows.Next() {
		stage := &models.Stage{}
		if err := rows.Scan(&stage.ID, &stage.EventID, &stage.StartDate, &stage.EndDate); err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return stages, nil
}
