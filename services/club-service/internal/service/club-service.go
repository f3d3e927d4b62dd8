package service

import (
	"context"
	"strings"

	apperrors "github.com/burakmert236/clubscore/common/errors"
	"github.com/burakmert236/clubscore/common/logger"
	"github.com/burakmert236/clubscore/common/models"
	"github.com/burakmert236/clubscore/common/utils"
	cluberrors "github.com/burakmert236/clubscore/services/club-service/internal/errors"
	"github.com/burakmert236/clubscore/services/club-service/internal/events"
	"github.com/burakmert236/clubscore/services/club-service/internal/repository"
	"github.com/jonboulle/clockwork"
)

type ClubService interface {
	Create(ctx context.Context, name, createdBy string) (*models.Club, error)
	List(ctx context.Context) ([]*models.Club, error)
	Get(ctx context.Context, clubId string) (*models.Club, error)
	Delete(ctx context.Context, clubId string) error
}

type clubService struct {
	clubRepo  repository.ClubRepository
	matchRepo repository.MatchRepository
	publisher events.Publisher
	clock     clockwork.Clock
	logger    *logger.Logger
}

func NewClubService(
	clubRepo repository.ClubRepository,
	matchRepo repository.MatchRepository,
	publisher events.Publisher,
	clock clockwork.Clock,
	logger *logger.Logger,
) ClubService {
	return &clubService{
		clubRepo:  clubRepo,
		matchRepo: matchRepo,
		publisher: publisher,
		clock:     clock,
		logger:    logger.With("component", "club-service"),
	}
}

func (s *clubService) Create(ctx context.Context, name, createdBy string) (*models.Club, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("name required")
	}
	if createdBy == "" {
		return nil, cluberrors.CallerRequired()
	}

	club := &models.Club{
		ClubId:    utils.NewID("club"),
		Name:      name,
		CreatedAt: s.clock.Now().UTC(),
		CreatedBy: createdBy,
	}

	if err := s.clubRepo.Create(ctx, club); err != nil {
		return nil, err
	}

	s.logger.Info("Club created", "club_id", club.ClubId)
	return club, nil
}

func (s *clubService) List(ctx context.Context) ([]*models.Club, error) {
	clubs, err := s.clubRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return clubs, nil
}

func (s *clubService) Get(ctx context.Context, clubId string) (*models.Club, error) {
	if clubId == "" {
		return nil, cluberrors.ClubIdRequired()
	}

	club, err := s.clubRepo.GetById(ctx, clubId)
	if err != nil {
		return nil, err
	}
	return club, nil
}

// Delete removes every match of the club, then the club itself. Matches go
// first so a failed run can be retried. Memberships are left in place.
func (s *clubService) Delete(ctx context.Context, clubId string) error {
	if clubId == "" {
		return cluberrors.ClubIdRequired()
	}

	matchIds, err := s.matchRepo.ListIdsByClub(ctx, clubId)
	if err != nil {
		return err
	}

	if err := s.matchRepo.DeleteBatch(ctx, matchIds); err != nil {
		s.logger.Error("Cascade delete of matches failed", "club_id", clubId, "matches", len(matchIds), "error", err)
		return err
	}

	if err := s.clubRepo.Delete(ctx, clubId); err != nil {
		return err
	}

	s.logger.Info("Club deleted", "club_id", clubId, "matches_deleted", len(matchIds))

	if err := s.publisher.PublishClubDeleted(ctx, clubId); err != nil {
		s.logger.Warn("Failed to publish club deleted event", "club_id", clubId, "error", err)
	}

	return nil
}
