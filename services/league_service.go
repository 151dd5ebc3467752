package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JackRamey/MTGLeague/models"
	"github.com/JackRamey/MTGLeague/repositories"
	"github.com/JackRamey/MTGLeague/storage"
	"github.com/jonboulle/clockwork"
)

type LeagueService interface {
	CreateLeague(ctx context.Context, name string, creatorID int) (*models.League, error)
	GetLeague(ctx context.Context, id int) (*models.League, error)
	ListLeagues(ctx context.Context) ([]*models.League, error)

	AddMember(ctx context.Context, leagueID, userID int) (*models.Membership, error)
	AddModerator(ctx context.Context, leagueID, userID int) error
	AddOwner(ctx context.Context, leagueID, userID int) error
	Members(ctx context.Context, leagueID int) ([]*models.User, error)
	Moderators(ctx context.Context, leagueID int) ([]*models.User, error)
	Owners(ctx context.Context, leagueID int) ([]*models.User, error)

	// EditableByUser reports whether the user may manage the league:
	// the creator always can, as can any member holding the moderator flag.
	EditableByUser(ctx context.Context, leagueID, userID int) (bool, error)

	CreatePost(ctx context.Context, leagueID, authorID int, title, body string) (*models.Post, error)
	ListPosts(ctx context.Context, leagueID int) ([]*models.Post, error)

	UploadLogo(ctx context.Context, leagueID int, contentType string, content io.Reader) (*models.League, error)
}

type leagueService struct {
	db             *sql.DB
	leagueRepo     repositories.LeagueRepository
	membershipRepo repositories.MembershipRepository
	postRepo       repositories.PostRepository
	uploader       storage.FileUploader
	clock          clockwork.Clock
}

func NewLeagueService(
	db *sql.DB,
	leagueRepo repositories.LeagueRepository,
	membershipRepo repositories.MembershipRepository,
	postRepo repositories.PostRepository,
	uploader storage.FileUploader,
	clock clockwork.Clock,
) LeagueService {
	return &leagueService{
		db:             db,
		leagueRepo:     leagueRepo,
		membershipRepo: membershipRepo,
		postRepo:       postRepo,
		uploader:       uploader,
		clock:          clock,
	}
}

// CreateLeague creates the league and enrolls the creator as an owner
// member in one transaction.
func (s *leagueService) CreateLeague(ctx context.Context, name string, creatorID int) (*models.League, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrLeagueNameRequired
	}

	league := &models.League{
		Name:         name,
		CreatorID:    creatorID,
		CreationDate: s.clock.Now(),
	}

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

	if txErr = s.leagueRepo.Create(ctx, tx, league); txErr != nil {
		if errors.Is(txErr, repositories.ErrLeagueNameConflict) {
			return nil, ErrLeagueNameConflict
		}
		return nil, txErr
	}

	membership := &models.Membership{
		UserID:   creatorID,
		LeagueID: league.ID,
		Owner:    true,
	}
	if txErr = s.membershipRepo.Create(ctx, tx, membership); txErr != nil {
		return nil, fmt.Errorf("failed to enroll creator: %w", txErr)
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", txErr)
	}
	return league, nil
}

func (s *leagueService) GetLeague(ctx context.Context, id int) (*models.League, error) {
	league, err := s.leagueRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	s.populateLogoURL(league)
	return league, nil
}

func (s *leagueService) ListLeagues(ctx context.Context) ([]*models.League, error) {
	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, league := range leagues {
		s.populateLogoURL(league)
	}
	return leagues, nil
}

func (s *leagueService) AddMember(ctx context.Context, leagueID, userID int) (*models.Membership, error) {
	if _, err := s.membershipRepo.FindByUserAndLeague(ctx, userID, leagueID); err == nil {
		return nil, ErrMembershipConflict
	} else if !errors.Is(err, repositories.ErrMembershipNotFound) {
		return nil, err
	}

	membership := &models.Membership{
		UserID:   userID,
		LeagueID: leagueID,
	}
	if err := s.membershipRepo.Create(ctx, nil, membership); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMembershipConflict):
			return nil, ErrMembershipConflict
		case errors.Is(err, repositories.ErrMembershipUserInvalid):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrMembershipLeagueInvalid):
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return membership, nil
}

func (s *leagueService) AddModerator(ctx context.Context, leagueID, userID int) error {
	return s.setRole(ctx, leagueID, userID, true, false)
}

func (s *leagueService) AddOwner(ctx context.Context, leagueID, userID int) error {
	return s.setRole(ctx, leagueID, userID, false, true)
}

// setRole flips the role flags on an existing membership. The flags are
// mutually exclusive: promoting to moderator clears owner and vice versa.
func (s *leagueService) setRole(ctx context.Context, leagueID, userID int, moderator, owner bool) error {
	membership, err := s.membershipRepo.FindByUserAndLeague(ctx, userID, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return ErrMembershipNotFound
		}
		return err
	}
	return s.membershipRepo.UpdateFlags(ctx, membership.ID, moderator, owner)
}

func (s *leagueService) Members(ctx context.Context, leagueID int) ([]*models.User, error) {
	return s.membersByFlag(ctx, leagueID, func(*models.Membership) bool { return true })
}

func (s *leagueService) Moderators(ctx context.Context, leagueID int) ([]*models.User, error) {
	return s.membersByFlag(ctx, leagueID, func(m *models.Membership) bool { return m.Moderator })
}

func (s *leagueService) Owners(ctx context.Context, leagueID int) ([]*models.User, error) {
	return s.membersByFlag(ctx, leagueID, func(m *models.Membership) bool { return m.Owner })
}

func (s *leagueService) membersByFlag(ctx context.Context, leagueID int, keep func(*models.Membership) bool) ([]*models.User, error) {
	memberships, err := s.membershipRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, len(memberships))
	for _, m := range memberships {
		if !keep(m) || m.User == nil {
			continue
		}
		m.User.PasswordHash = ""
		users = append(users, m.User)
	}
	return users, nil
}

func (s *leagueService) EditableByUser(ctx context.Context, leagueID, userID int) (bool, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return false, ErrLeagueNotFound
		}
		return false, err
	}
	if league.CreatorID == userID {
		return true, nil
	}

	membership, err := s.membershipRepo.FindByUserAndLeague(ctx, userID, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return false, nil
		}
		return false, err
	}
	return membership.Moderator, nil
}

func (s *leagueService) CreatePost(ctx context.Context, leagueID, authorID int, title, body string) (*models.Post, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrPostTitleRequired
	}

	if _, err := s.membershipRepo.FindByUserAndLeague(ctx, authorID, leagueID); err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return nil, ErrNotLeagueMember
		}
		return nil, err
	}

	post := &models.Post{
		LeagueID:  leagueID,
		AuthorID:  authorID,
		Title:     title,
		Body:      body,
		CreatedAt: s.clock.Now(),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		if errors.Is(err, repositories.ErrPostLeagueInvalid) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *leagueService) ListPosts(ctx context.Context, leagueID int) ([]*models.Post, error) {
	posts, err := s.postRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	for _, post := range posts {
		if post.Author != nil {
			post.Author.PasswordHash = ""
		}
	}
	return posts, nil
}

func (s *leagueService) UploadLogo(ctx context.Context, leagueID int, contentType string, content io.Reader) (*models.League, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}

	oldKey := league.LogoKey
	key := fmt.Sprintf("logos/league_%d", leagueID)

	result, err := s.uploader.Upload(ctx, key, contentType, content)
	if err != nil {
		return nil, fmt.Errorf("failed to upload league logo: %w", err)
	}

	league.LogoKey = &result.Key
	if err := s.leagueRepo.UpdateLogoKey(ctx, leagueID, league.LogoKey); err != nil {
		return nil, fmt.Errorf("failed to store logo key: %w", err)
	}

	if oldKey != nil && *oldKey != result.Key {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	s.populateLogoURL(league)
	return league, nil
}

func (s *leagueService) populateLogoURL(league *models.League) {
	if league.LogoKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*league.LogoKey)
		league.LogoURL = &url
	}
}
