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
	ErrParticipantNotFound     = errors.New("participant not found")
	ErrParticipantConflict     = errors.New("participant conflict: user already enrolled in this event")
	ErrParticipantUserInvalid  = errors.New("participant user conflict or invalid")
	ErrParticipantEventInvalid = errors.New("participant event conflict or invalid")
)

type ParticipantRepository interface {
	Create(ctx context.Context, p *models.Participant) error
	FindByID(ctx context.Context, id int) (*models.Participant, error)
	FindByUserAndEvent(ctx context.Context, userID, eventID int) (*models.Participant, error)
	ListByEvent(ctx context.Context, eventID int) ([]*models.Participant, error)
	ListByUser(ctx context.Context, userID int) ([]*models.Participant, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO participants (user_id, event_id)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, p.UserID, p.EventID).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "participants_user_id_event_id_key" {
					return ErrParticipantConflict
				}
			case "23503":
				switch pqErr.Constraint {
				case "participants_user_id_fkey":
					return ErrParticipantUserInvalid
				case "participants_event_id_fkey":
					return ErrParticipantEventInvalid
				}
			}
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (r *postgresParticipantRepository) FindByID(ctx context.Context, id int) (*models.Participant, error) {
	query := `
		SELECT id, user_id, event_id, created_at
		FROM participants
		WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *postgresParticipantRepository) FindByUserAndEvent(ctx context.Context, userID, eventID int) (*models.Participant, error) {
	query := `
		SELECT id, user_id, event_id, created_at
		FROM participants
		WHERE user_id = $1 AND event_id = $2`
	return r.findOne(ctx, query, userID, eventID)
}

func (r *postgresParticipantRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.Participant, error) {
	query := `
		SELECT
			p.id, p.user_id, p.event_id, p.created_at,
			u.id, u.name, u.email, u.password_hash, u.admin, u.join_date, u.avatar_key
		FROM participants p
		JOIN users u ON p.user_id = u.id
		WHERE p.event_id = $1`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		p := &models.Participant{}
		user := &models.User{}
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.EventID, &p.CreatedAt,
			&user.ID, &user.Name, &user.Email, &user.PasswordHash,
			&user.Admin, &user.JoinDate, &user.AvatarKey,
		); err != nil {
			return nil, err
		}
		p.User = user
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *postgresParticipantRepository) ListByUser(ctx context.Context, userID int) ([]*models.Participant, error) {
	query := `
		SELECT id, user_id, event_id, created_at
		FROM participants
		WHERE user_id = $1`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		p := &models.Participant{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.EventID, &p.CreatedAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *postgresParticipantRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Participant, error) {
	p := &models.Participant{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.UserID, &p.EventID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	return p, nil
}
