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
	ErrLeagueNotFound       = errors.New("league not found")
	ErrLeagueNameConflict   = errors.New("league name conflict")
	ErrLeagueCreatorInvalid = errors.New("league creator conflict or invalid")
)

type LeagueRepository interface {
	Create(ctx context.Context, exec SQLExecutor, league *models.League) error
	GetByID(ctx context.Context, id int) (*models.League, error)
	List(ctx context.Context) ([]*models.League, error)
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
}

type postgresLeagueRepository struct {
	db *sql.DB
}

func NewPostgresLeagueRepository(db *sql.DB) LeagueRepository {
	return &postgresLeagueRepository{db: db}
}

func (r *postgresLeagueRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresLeagueRepository) Create(ctx context.Context, exec SQLExecutor, league *models.League) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO leagues (name, creator_id, creation_date)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := executor.QueryRowContext(ctx, query,
		league.Name,
		league.CreatorID,
		league.CreationDate,
	).Scan(&league.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "leagues_name_key" {
					return ErrLeagueNameConflict
				}
			case "23503":
				if pqErr.Constraint == "leagues_creator_id_fkey" {
					return ErrLeagueCreatorInvalid
				}
			}
		}
		return fmt.Errorf("failed to create league: %w", err)
	}
	return nil
}

func (r *postgresLeagueRepository) GetByID(ctx context.Context, id int) (*models.League, error) {
	query := `
		SELECT id, name, creator_id, creation_date, logo_key
		FROM leagues
		WHERE id = $1`

	league := &models.League{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&league.ID,
		&league.Name,
		&league.CreatorID,
		&league.CreationDate,
		&league.LogoKey,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return league, nil
}

func (r *postgresLeagueRepository) List(ctx context.Context) ([]*models.League, error) {
	query := `
		SELECT id, name, creator_id, creation_date, logo_key
		FROM leagues
		ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leagues := make([]*models.League, 0)
	for rows.Next() {
		league := &models.League{}
		if err := rows.Scan(
			&league.ID,
			&league.Name,
			&league.CreatorID,
			&league.CreationDate,
			&league.LogoKey,
		); err != nil {
			return nil, err
		}
		leagues = append(leagues, league)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return leagues, nil
}

func (r *postgresLeagueRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	query := `UPDATE leagues SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}
