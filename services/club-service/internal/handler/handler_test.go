package handler

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/burakmert236/clubscore/common/auth"
	apperrors "github.com/burakmert236/clubscore/common/errors"
	"github.com/burakmert236/clubscore/common/httpx"
	"github.com/burakmert236/clubscore/common/logger"
	"github.com/burakmert236/clubscore/common/models"
	cluberrors "github.com/burakmert236/clubscore/services/club-service/internal/errors"
	"github.com/burakmert236/clubscore/services/club-service/internal/service"
)

const goodToken = "good-token"

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, raw string) (*auth.User, error) {
	if raw != goodToken {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "Invalid or expired token")
	}
	return &auth.User{Sub: "u1", Email: "ann@example.com", Username: "ann"}, nil
}

type stubMatches struct {
	service.MatchService
	matches   map[string]*models.Match
	gotTeam   string
	gotDelta  int
	gotCreate service.CreateMatchInput
}

func (s *stubMatches) Create(_ context.Context, in service.CreateMatchInput) (*models.Match, error) {
	s.gotCreate = in
	return &models.Match{MatchId: "match_new", ClubId: in.ClubId, Status: models.MatchStatusLive}, nil
}

func (s *stubMatches) Get(_ context.Context, id string) (*models.Match, error) {
	if m, ok := s.matches[id]; ok {
		return m, nil
	}
	return nil, cluberrors.MatchNotFound()
}

func (s *stubMatches) List(_ context.Context, clubId string) ([]*models.Match, error) {
	if clubId == "" {
		return nil, cluberrors.ClubIdRequired()
	}
	return nil, nil
}

func (s *stubMatches) AdjustScore(_ context.Context, id, team string, delta int) (*models.Match, error) {
	s.gotTeam, s.gotDelta = team, delta
	m, ok := s.matches[id]
	if !ok {
		return nil, cluberrors.MatchNotFound()
	}
	if !m.IsLive() {
		return nil, cluberrors.MatchNotLive()
	}
	return m, nil
}

func (s *stubMatches) Finalize(_ context.Context, id string) (*models.Match, error) {
	return s.Get(context.Background(), id)
}

type stubClubs struct {
	service.ClubService
	deleted []string
	creator string
}

func (s *stubClubs) Create(_ context.Context, name, createdBy string) (*models.Club, error) {
	s.creator = createdBy
	return &models.Club{ClubId: "club_1", Name: name, CreatedBy: createdBy}, nil
}

func (s *stubClubs) List(context.Context) ([]*models.Club, error) {
	return []*models.Club{{ClubId: "club_1", Name: "Riverside"}}, nil
}

func (s *stubClubs) Delete(_ context.Context, clubId string) error {
	for _, d := range s.deleted {
		if d == clubId {
			return cluberrors.ClubNotFound()
		}
	}
	s.deleted = append(s.deleted, clubId)
	return nil
}

type stubMembers struct {
	service.MemberService
	joined map[string]bool
}

func (s *stubMembers) Join(_ context.Context, clubId, userId string) (*service.JoinResult, error) {
	key := clubId + "/" + userId
	already := s.joined[key]
	s.joined[key] = true
	return &service.JoinResult{AlreadyMember: already}, nil
}

func (s *stubMembers) ListMembers(context.Context, string) ([]models.Member, error) {
	return []models.Member{{UserId: "u9", DisplayName: "u9"}}, nil
}

type stubProfiles struct {
	service.ProfileService
}

func (stubProfiles) GetOrCreate(_ context.Context, user *auth.User) (*models.UserProfile, error) {
	return &models.UserProfile{UserId: user.Sub, DisplayName: user.Username}, nil
}

type fixture struct {
	router  http.Handler
	matches *stubMatches
	clubs   *stubClubs
}

func newFixture() *fixture {
	f := &fixture{
		matches: &stubMatches{matches: map[string]*models.Match{
			"match_live":  {MatchId: "match_live", Status: models.MatchStatusLive},
			"match_final": {MatchId: "match_final", Status: models.MatchStatusFinal},
		}},
		clubs: &stubClubs{},
	}
	f.router = NewRouter(Services{
		Clubs:    f.clubs,
		Matches:  f.matches,
		Members:  &stubMembers{joined: map[string]bool{}},
		Profiles: stubProfiles{},
	}, stubVerifier{}, logger.Nop())
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+goodToken)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httpx.ErrorBody {
	t.Helper()
	var body httpx.ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %s", rec.Body.String())
	}
	return body
}

func TestHealth(t *testing.T) {
	rec := newFixture().do(t, http.MethodGet, "/health", "", false)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"healthy"`) {
		t.Fatalf("health = %d %s", rec.Code, rec.Body.String())
	}
}

func TestGetMissingMatchIs404(t *testing.T) {
	rec := newFixture().do(t, http.MethodGet, "/matches/match_nope", "", false)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != apperrors.CodeNotFound {
		t.Fatalf("code = %s", body.Code)
	}
}

func TestScoreOnFinalMatchIs400NotLive(t *testing.T) {
	rec := newFixture().do(t, http.MethodPost, "/matches/match_final/score", `{"team":"A"}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != apperrors.CodeNotLive {
		t.Fatalf("code = %s, want NOT_LIVE", body.Code)
	}
}

func TestScoreRequiresToken(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/matches/match_live/score", `{"team":"A"}`, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if f.matches.gotTeam != "" {
		t.Fatalf("service must not be called without a token")
	}
}

func TestScoreBodyDefaultsAndAlias(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/matches/match_live/score", `{"which":"B"}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if f.matches.gotTeam != "B" || f.matches.gotDelta != 1 {
		t.Fatalf("team = %s delta = %d, want B +1", f.matches.gotTeam, f.matches.gotDelta)
	}

	f.do(t, http.MethodPost, "/matches/match_live/score", `{"team":"A","delta":-3}`, true)
	if f.matches.gotTeam != "A" || f.matches.gotDelta != -3 {
		t.Fatalf("team = %s delta = %d, want A -3", f.matches.gotTeam, f.matches.gotDelta)
	}
}

func TestScoreRejectsNonIntegerDelta(t *testing.T) {
	for _, body := range []string{`{"team":"A","delta":1.5}`, `{"team":"A","delta":"abc"}`, `{"team":"A","delta":true}`} {
		rec := newFixture().do(t, http.MethodPost, "/matches/match_live/score", body, true)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestCreateMatchParsesStartedAt(t *testing.T) {
	f := newFixture()

	body := `{"clubId":"club_1","teams":{"A":["Ann"],"B":["Bob"]},"startedAt":1748772000000,"bestOf":3}`
	rec := f.do(t, http.MethodPost, "/matches", body, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	in := f.matches.gotCreate
	want := time.UnixMilli(1748772000000).UTC()
	if in.StartedAt == nil || !in.StartedAt.Equal(want) || in.BestOf != 3 || len(in.Teams.A) != 1 {
		t.Fatalf("input = %+v", in)
	}

	rec = f.do(t, http.MethodPost, "/matches", `{"clubId":"club_1","startedAt":"yesterday"}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad startedAt status = %d", rec.Code)
	}
}

func TestListMatchesRequiresClub(t *testing.T) {
	f := newFixture()

	if rec := f.do(t, http.MethodGet, "/matches", "", false); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	rec := f.do(t, http.MethodGet, "/matches?clubId=club_1", "", false)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"items":[]}` {
		t.Fatalf("list = %d %s", rec.Code, rec.Body.String())
	}
}

func TestDeleteClub(t *testing.T) {
	f := newFixture()

	if rec := f.do(t, http.MethodDelete, "/clubs/club_1", "", true); rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec := f.do(t, http.MethodDelete, "/clubs/club_1", "", true); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestCreateClubUsesCaller(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/clubs", `{"name":"Riverside"}`, true)
	if rec.Code != http.StatusCreated || f.clubs.creator != "u1" {
		t.Fatalf("status = %d creator = %q", rec.Code, f.clubs.creator)
	}
}

func TestListClubsWrapsItems(t *testing.T) {
	rec := newFixture().do(t, http.MethodGet, "/clubs", "", false)

	var body struct {
		Items []models.Club `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || len(body.Items) != 1 {
		t.Fatalf("body = %s (%v)", rec.Body.String(), err)
	}
}

func TestJoinTwiceReportsAlreadyMember(t *testing.T) {
	f := newFixture()

	var first, second joinResponse
	_ = json.Unmarshal(f.do(t, http.MethodPost, "/clubs/club_1/members", "", true).Body.Bytes(), &first)
	_ = json.Unmarshal(f.do(t, http.MethodPost, "/clubs/club_1/members", "", true).Body.Bytes(), &second)

	if !first.OK || first.AlreadyMember {
		t.Fatalf("first = %+v", first)
	}
	if !second.OK || !second.AlreadyMember {
		t.Fatalf("second = %+v", second)
	}
}

func TestMeCreatesProfileFromToken(t *testing.T) {
	rec := newFixture().do(t, http.MethodGet, "/me", "", true)

	var profile models.UserProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusOK || profile.UserId != "u1" || profile.DisplayName != "ann" {
		t.Fatalf("me = %d %+v", rec.Code, profile)
	}
}

func TestParseDelta(t *testing.T) {
	cases := map[string]int{"": 1, "null": 1, "2": 2, "-7": -7, `"3"`: 3, "4.0": 4}
	for raw, want := range cases {
		got, err := parseDelta(json.RawMessage(raw))
		if err != nil || got != want {
			t.Errorf("parseDelta(%q) = %d, %v; want %d", raw, got, err, want)
		}
	}

	bounds := map[string]int{"2147483647": math.MaxInt32, "-2147483647.0": -math.MaxInt32}
	for raw, want := range bounds {
		got, err := parseDelta(json.RawMessage(raw))
		if err != nil || got != want {
			t.Errorf("parseDelta(%q) = %d, %v; want %d", raw, got, err, want)
		}
	}

	for _, raw := range []string{"9223372036854775807", "3000000000", "3000000000.0", `"-3000000000"`, "1.5", `"abc"`} {
		if _, err := parseDelta(json.RawMessage(raw)); !apperrors.Is(err, apperrors.CodeValidation) {
			t.Errorf("parseDelta(%q) code = %s, want VALIDATION", raw, apperrors.CodeOf(err))
		}
	}
}
