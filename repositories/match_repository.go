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
	ErrMatchNotFound           = errors.New("match not found")
	ErrMatchStageInvalid       = errors.New("match stage conflict or invalid")
	ErrMatchParticipantInvalid = errors.New("match participant conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	UpdateResults(ctx context.Context, exec SQLExecutor, match *models.Match) error
	ListByStage(ctx context.Context, stageID int) ([]*models.Match, error)
	// ListByParticipant returns every match the participant appears in on
	// either side, across all stages of the event.
	ListByParticipant(ctx context.Context, participantID int) ([]*models.Match, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (stage_id, p1_id, p2_id, p1_wins, p2_wins, draws)
		VALUES ($1, $2, $3, 0, 0, 0)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		match.StageID,
		match.P1ID,
		match.P2ID,
	).Scan(&match.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "matches_stage_id_fkey":
				return ErrMatchStageInvalid
			case "matches_p1_id_fkey", "matches_p2_id_fkey":
				return ErrMatchParticipantInvalid
			}
		}
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `
		SELECT id, stage_id, p1_id, p2_id, winner_id, loser_id, p1_wins, p2_wins, draws, resolved_at
		FROM matches
		WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	match, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

// UpdateResults overwrites every result column. Repeat calls replace the
// previous results, they never accumulate.
func (r *postgresMatchRepository) UpdateResults(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches SET
			winner_id = $1,
			loser_id = $2,
			p1_wins = $3,
			p2_wins = $4,
			draws = $5,
			resolved_at = $6
		WHERE id = $7`

	result, err := executor.ExecContext(ctx, query,
		match.WinnerID,
		match.LoserID,
		match.P1Wins,
		match.P2Wins,
		match.Draws,
		match.ResolvedAt,
		match.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrMatchParticipantInvalid
		}
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) ListByStage(ctx context.Context, stageID int) ([]*models.Match, error) {
	query := `
		SELECT id, stage_id, p1_id, p2_id, winner_id, loser_id, p1_wins, p2_wins, draws, resolved_at
		FROM matches
		WHERE stage_id = $1`
	return r.listMatches(ctx, query, stageID)
}

func (r *postgresMatchRepository) ListByParticipant(ctx context.Context, participantID int) ([]*models.Match, error) {
	query := `
		SELECT id, stage_id, p1_id, p2_id, winner_id, loser_id, p1_wins, p2_wins, draws, resolved_at
		FROM matches
		WHERE p1_id = $1 OR p2_id = $1`
	return r.listMatches(ctx, query, participantID)
}

func (r *postgresMatchRepository) listMatches(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	var winnerID, loserID sql.NullInt64
	var resolvedAt sql.NullTime

	err := rowScanner.Scan(
		&m.ID,
		&m.StageID,
		&m.P1ID,
		&m.P2ID,
		&winnerID,
		&loserID,
		&m.P1Wins,
		&m.P2Wins,
		&m.Draws,
		&resolvedAt,
	)
	if err != nil {
		return nil, err
	}

	if winnerID.Valid {
		id := int(winnerID.Int64)
		m.WinnerID = &id
	}
	if loserID.Valid {
		id := int(loserID.Int64)
		m.LoserID = &id
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		m.ResolvedAt = &t
	}
	return m, nil
}
