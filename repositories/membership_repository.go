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
	ErrMembershipNotFound      = errors.New("membership not found")
	ErrMembershipConflict      = errors.New("membership conflict: user already belongs to this league")
	ErrMembershipUserInvalid   = errors.New("membership user conflict or invalid")
	ErrMembershipLeagueInvalid = errors.New("membership league conflict or invalid")
)

type MembershipRepository interface {
	Create(ctx context.Context, exec SQLExecutor, membership *models.Membership) error
	FindByUserAndLeague(ctx context.Context, userID, leagueID int) (*models.Membership, error)
	UpdateFlags(ctx context.Context, id int, moderator, owner bool) error
	ListByLeague(ctx context.Context, leagueID int) ([]*models.Membership, error)
	ListLeagueIDsByUser(ctx context.Context, userID int) ([]int, error)
}

type postgresMembershipRepository struct {
	db *sql.DB
}

func NewPostgresMembershipRepository(db *sql.DB) MembershipRepository {
	return &postgresMembershipRepository{db: db}
}

func (r *postgresMembershipRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMembershipRepository) Create(ctx context.Context, exec SQLExecutor, membership *models.Membership) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO memberships (user_id, league_id, moderator, owner)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := executor.QueryRowContext(ctx, query,
		membership.UserID,
		membership.LeagueID,
		membership.Moderator,
		membership.Owner,
	).Scan(&membership.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "memberships_user_id_league_id_key" {
					return ErrMembershipConflict
				}
			case "23503":
				switch pqErr.Constraint {
				case "memberships_user_id_fkey":
					return ErrMembershipUserInvalid
				case "memberships_league_id_fkey":
					return ErrMembershipLeagueInvalid
				}
			}
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

func (r *postgresMembershipRepository) FindByUserAndLeague(ctx context.Context, userID, leagueID int) (*models.Membership, error) {
	query := `
		SELECT id, user_id, league_id, moderator, owner
		FROM memberships
		WHERE user_id = $1 AND league_id = $2`

	m := &models.Membership{}
	err := r.db.QueryRowContext(ctx, query, userID, leagueID).Scan(
		&m.ID,
		&m.UserID,
		&m.LeagueID,
		&m.Moderator,
		&m.Owner,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMembershipRepository) UpdateFlags(ctx context.Context, id int, moderator, owner bool) error {
	query := `UPDATE memberships SET moderator = $1, owner = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, moderator, owner, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMembershipNotFound)
}

// ListByLeague returns all memberships of a league with the member user
// loaded, so member/moderator/owner projections need a single query.
func (r *postgresMembershipRepository) ListByLeague(ctx context.Context, leagueID int) ([]*models.Membership, error) {
	query := `
		SELECT
			m.id, m.user_id, m.league_id, m.moderator, m.owner,
			u.id, u.name, u.email, u.password_hash, u.admin, u.join_date, u.avatar_key
		FROM memberships m
		JOIN users u ON m.user_id = u.id
		WHERE m.league_id = $1`

	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	memberships := make([]*models.Membership, 0)
	for rows.Next() {
		m := &models.Membership{}
		user := &models.User{}
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.LeagueID, &m.Moderator, &m.Owner,
			&user.ID, &user.Name, &user.Email, &user.PasswordHash,
			&user.Admin, &user.JoinDate, &user.AvatarKey,
		); err != nil {
			return nil, err
		}
		m.User = user
		memberships = append(memberships, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *postgresMembershipRepository) ListLeagueIDsByUser(ctx context.Context, userID int) ([]int, error) {
	query := `SELECT league_id FROM memberships WHERE user_id = $1`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leagueIDs := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		leagueIDs = append(leagueIDs, id)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return leagueIDs, nil
}
