package service

import (
	"context"
	"strings"

	"github.com/burakmert236/clubscore/common/logger"
	"github.com/burakmert236/clubscore/common/models"
	cluberrors "github.com/burakmert236/clubscore/services/club-service/internal/errors"
	"github.com/burakmert236/clubscore/services/club-service/internal/repository"
	"github.com/jonboulle/clockwork"
)

type JoinResult struct {
	AlreadyMember bool
}

type MemberService interface {
	// Join does not check that the club exists.
	Join(ctx context.Context, clubId, userId string) (*JoinResult, error)
	ListMembers(ctx context.Context, clubId string) ([]models.Member, error)
}

type memberService struct {
	memberRepo repository.MemberRepository
	userRepo   repository.UserRepository
	clock      clockwork.Clock
	logger     *logger.Logger
}

func NewMemberService(
	memberRepo repository.MemberRepository,
	userRepo repository.UserRepository,
	clock clockwork.Clock,
	logger *logger.Logger,
) MemberService {
	return &memberService{
		memberRepo: memberRepo,
		userRepo:   userRepo,
		clock:      clock,
		logger:     logger.With("component", "member-service"),
	}
}

func (s *memberService) Join(ctx context.Context, clubId, userId string) (*JoinResult, error) {
	clubId = strings.TrimSpace(clubId)
	if clubId == "" {
		return nil, cluberrors.ClubIdRequired()
	}
	if userId == "" {
		return nil, cluberrors.CallerRequired()
	}

	created, err := s.memberRepo.Create(ctx, &models.ClubMember{
		ClubId:   clubId,
		UserId:   userId,
		JoinedAt: s.clock.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.logger.Info("Member joined", "club_id", clubId, "user_id", userId)
	}

	return &JoinResult{AlreadyMember: !created}, nil
}

func (s *memberService) ListMembers(ctx context.Context, clubId string) ([]models.Member, error) {
	if clubId == "" {
		return nil, cluberrors.ClubIdRequired()
	}

	memberships, err := s.memberRepo.ListByClub(ctx, clubId)
	if err != nil {
		return nil, err
	}

	out := make([]models.Member, 0, len(memberships))
	if len(memberships) == 0 {
		return out, nil
	}

	userIds := make([]string, 0, len(memberships))
	for _, m := range memberships {
		userIds = append(userIds, m.UserId)
	}

	profiles, err := s.userRepo.GetByIds(ctx, userIds)
	if err != nil {
		return nil, err
	}

	for _, m := range memberships {
		member := models.Member{UserId: m.UserId, DisplayName: m.UserId}
		if p, ok := profiles[m.UserId]; ok {
			if p.UserId == "" {
				p.UserId = m.UserId
			}
			member.DisplayName = p.ResolvedName()
			member.Email = p.Email
		}
		out = append(out, member)
	}

	return out, nil
}
