package service

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "github.com/burakmert236/clubscore/common/errors"
	"github.com/burakmert236/clubscore/common/models"
	cluberrors "github.com/burakmert236/clubscore/services/club-service/internal/errors"
)

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[string]*models.Match

	writes      int
	deleteCalls [][]string
	deleteErr   *apperrors.AppError
	finalizeErr *apperrors.AppError
	onGet       func()
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: map[string]*models.Match{}}
}

func (f *fakeMatchRepo) Create(_ context.Context, match *models.Match) *apperrors.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *match
	f.matches[match.MatchId] = &cp
	f.writes++
	return nil
}

func (f *fakeMatchRepo) GetById(_ context.Context, matchId string) (*models.Match, *apperrors.AppError) {
	f.mu.Lock()
	m, ok := f.matches[matchId]
	var cp models.Match
	if ok {
		cp = *m
	}
	f.mu.Unlock()

	if f.onGet != nil {
		f.onGet()
	}
	if !ok {
		return nil, cluberrors.MatchNotFound()
	}
	return &cp, nil
}

func (f *fakeMatchRepo) ListByClub(_ context.Context, clubId string) ([]*models.Match, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Match, 0)
	for _, m := range f.matches {
		if m.ClubId == clubId {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

func (f *fakeMatchRepo) ListIdsByClub(ctx context.Context, clubId string) ([]string, *apperrors.AppError) {
	matches, _ := f.ListByClub(ctx, clubId)
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.MatchId)
	}
	return ids, nil
}

func (f *fakeMatchRepo) UpdateScore(_ context.Context, matchId string, team models.Team, value int, now time.Time) (*models.Match, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[matchId]
	if !ok || !m.IsLive() {
		return nil, cluberrors.MatchNotLive()
	}
	m.Score.Set(team, value)
	m.UpdatedAt = now
	f.writes++
	cp := *m
	return &cp, nil
}

func (f *fakeMatchRepo) Finalize(_ context.Context, matchId string, now time.Time) (*models.Match, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finalizeErr != nil {
		return nil, f.finalizeErr
	}
	m, ok := f.matches[matchId]
	if !ok || !m.IsLive() {
		return nil, cluberrors.MatchNotLive()
	}
	m.Status = models.MatchStatusFinal
	m.UpdatedAt = now
	m.FinalizedAt = &now
	f.writes++
	cp := *m
	return &cp, nil
}

func (f *fakeMatchRepo) DeleteBatch(_ context.Context, matchIds []string) *apperrors.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, matchIds)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for _, id := range matchIds {
		delete(f.matches, id)
	}
	return nil
}

func (f *fakeMatchRepo) score(matchId string) models.Score {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.matches[matchId].Score
}

type fakeClubRepo struct {
	mu    sync.Mutex
	clubs map[string]*models.Club
}

func newFakeClubRepo() *fakeClubRepo {
	return &fakeClubRepo{clubs: map[string]*models.Club{}}
}

func (f *fakeClubRepo) Create(_ context.Context, club *models.Club) *apperrors.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *club
	f.clubs[club.ClubId] = &cp
	return nil
}

func (f *fakeClubRepo) GetById(_ context.Context, clubId string) (*models.Club, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clubs[clubId]
	if !ok {
		return nil, cluberrors.ClubNotFound()
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClubRepo) List(_ context.Context) ([]*models.Club, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Club, 0, len(f.clubs))
	for _, c := range f.clubs {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeClubRepo) Delete(_ context.Context, clubId string) *apperrors.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clubs[clubId]; !ok {
		return cluberrors.ClubNotFound()
	}
	delete(f.clubs, clubId)
	return nil
}

type fakeMemberRepo struct {
	mu      sync.Mutex
	members map[string]map[string]*models.ClubMember
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: map[string]map[string]*models.ClubMember{}}
}

func (f *fakeMemberRepo) Create(_ context.Context, member *models.ClubMember) (bool, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	club := f.members[member.ClubId]
	if club == nil {
		club = map[string]*models.ClubMember{}
		f.members[member.ClubId] = club
	}
	if _, ok := club[member.UserId]; ok {
		return false, nil
	}
	cp := *member
	club[member.UserId] = &cp
	return true, nil
}

func (f *fakeMemberRepo) ListByClub(_ context.Context, clubId string) ([]*models.ClubMember, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.ClubMember, 0)
	for _, m := range f.members[clubId] {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserId < out[j].UserId })
	return out, nil
}

func (f *fakeMemberRepo) count(clubId string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.members[clubId])
}

type fakeUserRepo struct {
	mu       sync.Mutex
	profiles map[string]*models.UserProfile
	getErr   *apperrors.AppError
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{profiles: map[string]*models.UserProfile{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.UserProfile) (bool, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[user.UserId]; ok {
		return false, nil
	}
	cp := *user
	f.profiles[user.UserId] = &cp
	return true, nil
}

func (f *fakeUserRepo) GetById(_ context.Context, userId string) (*models.UserProfile, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.profiles[userId]
	if !ok {
		return nil, cluberrors.ProfileNotFound()
	}
	cp := *p
	return &cp, nil
}

func (f *fakeUserRepo) GetByIds(_ context.Context, userIds []string) (map[string]*models.UserProfile, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]*models.UserProfile{}
	for _, id := range userIds {
		if p, ok := f.profiles[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateDisplayName(_ context.Context, userId, displayName string, now time.Time) (*models.UserProfile, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userId]
	if !ok {
		return nil, cluberrors.ProfileNotFound()
	}
	p.DisplayName = displayName
	p.UpdatedAt = now
	cp := *p
	return &cp, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (f *fakePublisher) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, name)
	return f.err
}

func (f *fakePublisher) PublishMatchCreated(context.Context, *models.Match) error {
	return f.record("match.created")
}

func (f *fakePublisher) PublishScoreUpdated(context.Context, *models.Match) error {
	return f.record("match.score_updated")
}

func (f *fakePublisher) PublishMatchFinalized(context.Context, *models.Match) error {
	return f.record("match.finalized")
}

func (f *fakePublisher) PublishClubDeleted(context.Context, string) error {
	return f.record("club.deleted")
}

func (f *fakePublisher) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e == name {
			n++
		}
	}
	return n
}
