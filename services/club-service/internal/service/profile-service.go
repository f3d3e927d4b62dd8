package service

import (
	"context"
	"strings"

	"github.com/burakmert236/clubscore/common/auth"
	apperrors "github.com/burakmert236/clubscore/common/errors"
	"github.com/burakmert236/clubscore/common/logger"
	"github.com/burakmert236/clubscore/common/models"
	cluberrors "github.com/burakmert236/clubscore/services/club-service/internal/errors"
	"github.com/burakmert236/clubscore/services/club-service/internal/repository"
	"github.com/jonboulle/clockwork"
)

type ProfileService interface {
	// GetOrCreate returns the caller's profile, creating it on first use.
	GetOrCreate(ctx context.Context, user *auth.User) (*models.UserProfile, error)
	UpdateDisplayName(ctx context.Context, user *auth.User, displayName string) (*models.UserProfile, error)
}

type profileService struct {
	userRepo repository.UserRepository
	clock    clockwork.Clock
	logger   *logger.Logger
}

func NewProfileService(userRepo repository.UserRepository, clock clockwork.Clock, logger *logger.Logger) ProfileService {
	return &profileService{
		userRepo: userRepo,
		clock:    clock,
		logger:   logger.With("component", "profile-service"),
	}
}

func (s *profileService) GetOrCreate(ctx context.Context, user *auth.User) (*models.UserProfile, error) {
	if user == nil || user.Sub == "" {
		return nil, cluberrors.CallerRequired()
	}

	profile, err := s.userRepo.GetById(ctx, user.Sub)
	if err == nil {
		return profile, nil
	}
	if !apperrors.Is(err, apperrors.CodeNotFound) {
		return nil, err
	}

	now := s.clock.Now().UTC()
	profile = &models.UserProfile{
		UserId:      user.Sub,
		Email:       user.Email,
		Username:    user.Username,
		DisplayName: user.Username,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.userRepo.Create(ctx, profile)
	if err != nil {
		return nil, err
	}
	if !created {
		// Another request created it first.
		existing, err := s.userRepo.GetById(ctx, user.Sub)
		if err != nil {
			return nil, err
		}
		return existing, nil
	}

	s.logger.Info("Profile created", "user_id", user.Sub)
	return profile, nil
}

func (s *profileService) UpdateDisplayName(ctx context.Context, user *auth.User, displayName string) (*models.UserProfile, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, apperrors.Validation("displayName required")
	}

	if _, err := s.GetOrCreate(ctx, user); err != nil {
		return nil, err
	}

	profile, err := s.userRepo.UpdateDisplayName(ctx, user.Sub, displayName, s.clock.Now())
	if err != nil {
		return nil, err
	}
	return profile, nil
}
