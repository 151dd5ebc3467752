package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/JackRamey/MTGLeague/models"
	"github.com/JackRamey/MTGLeague/repositories"
	"github.com/JackRamey/MTGLeague/storage"
)

type UserService interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	// ActorForUser builds the capability view of a user: admin flag plus
	// the set of leagues the user belongs to. A zero userID yields the
	// anonymous actor.
	ActorForUser(ctx context.Context, userID int) (models.Actor, error)
	UploadAvatar(ctx context.Context, userID int, contentType string, content io.Reader) (*models.User, error)
	DeleteUser(ctx context.Context, id int) error
}

type userService struct {
	userRepo       repositories.UserRepository
	membershipRepo repositories.MembershipRepository
	uploader       storage.FileUploader
}

func NewUserService(
	userRepo repositories.UserRepository,
	membershipRepo repositories.MembershipRepository,
	uploader storage.FileUploader,
) UserService {
	return &userService{
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		uploader:       uploader,
	}
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.populateAvatarURL(user)
	return user, nil
}

func (s *userService) ActorForUser(ctx context.Context, userID int) (models.Actor, error) {
	if userID == 0 {
		return models.AnonymousActor{}, nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return models.AnonymousActor{}, nil
		}
		return nil, err
	}

	leagueIDs, err := s.membershipRepo.ListLeagueIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues for user %d: %w", userID, err)
	}
	return models.NewAuthenticatedActor(user, leagueIDs), nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID int, contentType string, content io.Reader) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	oldKey := user.AvatarKey
	key := fmt.Sprintf("avatars/user_%d", userID)

	result, err := s.uploader.Upload(ctx, key, contentType, content)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	user.AvatarKey = &result.Key
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to store avatar key: %w", err)
	}

	if oldKey != nil && *oldKey != result.Key {
		// Best effort, the new avatar is already live.
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	s.populateAvatarURL(user)
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id int) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if user.AvatarKey != nil && s.uploader != nil {
		_ = s.uploader.Delete(ctx, *user.AvatarKey)
	}
	return nil
}

func (s *userService) populateAvatarURL(user *models.User) {
	if user.AvatarKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*user.AvatarKey)
		user.AvatarURL = &url
	}
}
