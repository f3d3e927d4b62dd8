package service

import (
	"context"
	"math"
	"strings"
	"time"

	apperrors "github.com/burakmert236/clubscore/common/errors"
	"github.com/burakmert236/clubscore/common/logger"
	"github.com/burakmert236/clubscore/common/models"
	"github.com/burakmert236/clubscore/common/utils"
	cluberrors "github.com/burakmert236/clubscore/services/club-service/internal/errors"
	"github.com/burakmert236/clubscore/services/club-service/internal/events"
	"github.com/burakmert236/clubscore/services/club-service/internal/repository"
	"github.com/jonboulle/clockwork"
)

type CreateMatchInput struct {
	ClubId    string
	Teams     models.Teams
	Score     *models.Score
	StartedAt *time.Time
	BestOf    int
}

type MatchService interface {
	Create(ctx context.Context, input CreateMatchInput) (*models.Match, error)
	AdjustScore(ctx context.Context, matchId string, team string, delta int) (*models.Match, error)
	Finalize(ctx context.Context, matchId string) (*models.Match, error)
	Get(ctx context.Context, matchId string) (*models.Match, error)
	List(ctx context.Context, clubId string) ([]*models.Match, error)
}

type matchService struct {
	matchRepo repository.MatchRepository
	publisher events.Publisher
	clock     clockwork.Clock
	logger    *logger.Logger
}

func NewMatchService(
	matchRepo repository.MatchRepository,
	publisher events.Publisher,
	clock clockwork.Clock,
	logger *logger.Logger,
) MatchService {
	return &matchService{
		matchRepo: matchRepo,
		publisher: publisher,
		clock:     clock,
		logger:    logger.With("component", "match-service"),
	}
}

func (s *matchService) Create(ctx context.Context, input CreateMatchInput) (*models.Match, error) {
	clubId := strings.TrimSpace(input.ClubId)
	if clubId == "" {
		return nil, cluberrors.ClubIdRequired()
	}

	teams := models.Teams{A: cleanPlayers(input.Teams.A), B: cleanPlayers(input.Teams.B)}
	if len(teams.A) == 0 || len(teams.B) == 0 {
		return nil, apperrors.Validation("teams.A and teams.B each need at least one player")
	}

	score := models.Score{}
	if input.Score != nil {
		if input.Score.A < 0 || input.Score.B < 0 {
			return nil, apperrors.Validation("score must not be negative")
		}
		score = *input.Score
	}

	if input.BestOf < 0 {
		return nil, apperrors.Validation("bestOf must be positive")
	}
	bestOf := input.BestOf
	if bestOf == 0 {
		bestOf = 1
	}

	now := s.clock.Now().UTC()
	startedAt := now
	if input.StartedAt != nil && !input.StartedAt.IsZero() {
		startedAt = input.StartedAt.UTC()
	}

	match := &models.Match{
		MatchId:   utils.NewID("match"),
		ClubId:    clubId,
		Teams:     teams,
		BestOf:    bestOf,
		Score:     score,
		Status:    models.MatchStatusLive,
		StartedAt: startedAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, err
	}

	s.logger.Info("Match created", "match_id", match.MatchId, "club_id", clubId)
	s.announce(ctx, "match.created", match, s.publisher.PublishMatchCreated)

	return match, nil
}

// AdjustScore is a read-modify-write: concurrent adjustments are last writer wins.
func (s *matchService) AdjustScore(ctx context.Context, matchId string, rawTeam string, delta int) (*models.Match, error) {
	if matchId == "" {
		return nil, cluberrors.MatchIdRequired()
	}

	team, err := models.ParseTeam(rawTeam)
	if err != nil {
		return nil, cluberrors.InvalidTeam()
	}

	current, appErr := s.matchRepo.GetById(ctx, matchId)
	if appErr != nil {
		return nil, appErr
	}

	if !current.IsLive() {
		return nil, cluberrors.MatchNotLive()
	}

	next := clampScore(current.Score.Get(team), delta)

	updated, appErr := s.matchRepo.UpdateScore(ctx, matchId, team, next, s.clock.Now())
	if appErr != nil {
		return nil, appErr
	}

	s.logger.Debug("Score adjusted", "match_id", matchId, "team", string(team), "delta", delta, "value", next)
	s.announce(ctx, "match.score_updated", updated, s.publisher.PublishScoreUpdated)

	return updated, nil
}

// clampScore returns max(0, value+delta), saturating at math.MaxInt.
func clampScore(value, delta int) int {
	if delta > 0 && value > math.MaxInt-delta {
		return math.MaxInt
	}
	if next := value + delta; next > 0 {
		return next
	}
	return 0
}

func (s *matchService) Finalize(ctx context.Context, matchId string) (*models.Match, error) {
	if matchId == "" {
		return nil, cluberrors.MatchIdRequired()
	}

	current, appErr := s.matchRepo.GetById(ctx, matchId)
	if appErr != nil {
		return nil, appErr
	}

	if current.Status == models.MatchStatusFinal {
		return current, nil
	}

	finalized, appErr := s.matchRepo.Finalize(ctx, matchId, s.clock.Now())
	if appErr != nil {
		if !apperrors.Is(appErr, apperrors.CodeNotLive) {
			return nil, appErr
		}
		// Lost a race with another finalize; the stored record is the answer.
		latest, getErr := s.matchRepo.GetById(ctx, matchId)
		if getErr != nil {
			return nil, getErr
		}
		return latest, nil
	}

	s.logger.Info("Match finalized", "match_id", matchId, "score_a", finalized.Score.A, "score_b", finalized.Score.B)
	s.announce(ctx, "match.finalized", finalized, s.publisher.PublishMatchFinalized)

	return finalized, nil
}

func (s *matchService) Get(ctx context.Context, matchId string) (*models.Match, error) {
	if matchId == "" {
		return nil, cluberrors.MatchIdRequired()
	}

	match, err := s.matchRepo.GetById(ctx, matchId)
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (s *matchService) List(ctx context.Context, clubId string) ([]*models.Match, error) {
	if clubId == "" {
		return nil, cluberrors.ClubIdRequired()
	}

	matches, err := s.matchRepo.ListByClub(ctx, clubId)
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *matchService) announce(
	ctx context.Context,
	eventType string,
	match *models.Match,
	publish func(context.Context, *models.Match) error,
) {
	if err := publish(ctx, match); err != nil {
		s.logger.Warn("Failed to publish match event", "type", eventType, "match_id", match.MatchId, "error", err)
	}
}

func cleanPlayers(players []string) []string {
	out := make([]string, 0, len(players))
	for _, p := range players {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
