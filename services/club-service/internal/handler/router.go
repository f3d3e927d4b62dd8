package handler

import (
	"net/http"

	"github.com/burakmert236/clubscore/common/auth"
	"github.com/burakmert236/clubscore/common/httpx"
	"github.com/burakmert236/clubscore/common/logger"
	"github.com/burakmert236/clubscore/services/club-service/internal/service"
	"github.com/gorilla/mux"
)

type Services struct {
	Clubs    service.ClubService
	Matches  service.MatchService
	Members  service.MemberService
	Profiles service.ProfileService
}

type protector func(http.HandlerFunc) http.Handler

// NewRouter registers every club-service route. Mutations and /me require a
// verified bearer token.
func NewRouter(svcs Services, verifier auth.TokenVerifier, logger *logger.Logger) *mux.Router {
	writeErr := httpx.ErrorWriter(logger)
	require := auth.Require(verifier, writeErr)
	protect := func(h http.HandlerFunc) http.Handler { return require(h) }

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}).Methods(http.MethodGet)

	NewClubHandler(svcs.Clubs, writeErr, logger).Register(r, protect)
	NewMemberHandler(svcs.Members, writeErr, logger).Register(r, protect)
	NewMatchHandler(svcs.Matches, writeErr, logger).Register(r, protect)
	NewProfileHandler(svcs.Profiles, writeErr, logger).Register(r, protect)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusNotFound, httpx.ErrorBody{Code: "NOT_FOUND", Message: "Route not found"})
	})

	return r
}

func callerID(r *http.Request) string {
	if user, ok := auth.UserFromContext(r.Context()); ok {
		return user.Sub
	}
	return ""
}
