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
	ErrPostNotFound      = errors.New("post not found")
	ErrPostLeagueInvalid = errors.New("post league conflict or invalid")
	ErrPostAuthorInvalid = errors.New("post author conflict or invalid")
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	ListByLeague(ctx context.Context, leagueID int) ([]*models.Post, error)
}

type postgresPostRepository struct {
	db *sql.DB
}

func NewPostgresPostRepository(db *sql.DB) PostRepository {
	return &postgresPostRepository{db: db}
}

func (r *postgresPostRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (league_id, author_id, title, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		post.LeagueID,
		post.AuthorID,
		post.Title,
		post.Body,
		post.CreatedAt,
	).Scan(&post.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "posts_league_id_fkey":
				return ErrPostLeagueInvalid
			case "posts_author_id_fkey":
				return ErrPostAuthorInvalid
			}
		}
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *postgresPostRepository) ListByLeague(ctx context.Context, leagueID int) ([]*models.Post, error) {
	query := `
		SELECT
			p.id, p.league_id, p.author_id, p.title, p.body, p.created_at,
			u.id, u.name, u.email, u.password_hash, u.admin, u.join_date, u.avatar_key
		FROM posts p
		JOIN users u ON p.author_id = u.id
		WHERE p.league_id = $1
		ORDER BY p.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]*models.Post, 0)
	for rows.Next() {
		post := &models.Post{}
		author := &models.User{}
		if err := rows.Scan(
			&post.ID, &post.LeagueID, &post.AuthorID, &post.Title, &post.Body, &post.CreatedAt,
			&author.ID, &author.Name, &author.Email, &author.PasswordHash,
			&author.Admin, &author.JoinDate, &author.AvatarKey,
		); err != nil {
			return nil, err
		}
		post.Author = author
		posts = append(posts, post)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}
