package handler

import (
	"net/http"

	"github.com/burakmert236/clubscore/common/auth"
	"github.com/burakmert236/clubscore/common/httpx"
	"github.com/burakmert236/clubscore/common/logger"
	"github.com/burakmert236/clubscore/services/club-service/internal/service"
	"github.com/gorilla/mux"
)

type ProfileHandler struct {
	profileService service.ProfileService
	writeErr       func(http.ResponseWriter, *http.Request, error)
	logger         *logger.Logger
}

func NewProfileHandler(profileService service.ProfileService, writeErr func(http.ResponseWriter, *http.Request, error), logger *logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		writeErr:       writeErr,
		logger:         logger,
	}
}

func (h *ProfileHandler) Register(r *mux.Router, protect protector) {
	r.Handle("/me", protect(h.Me)).Methods(http.MethodGet)
	r.Handle("/profile", protect(h.Update)).Methods(http.MethodPost)
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	profile, err := h.profileService.GetOrCreate(r.Context(), user)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, profile)
}

type updateProfileRequest struct {
	DisplayName string `json:"displayName"`
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	user, _ := auth.UserFromContext(r.Context())
	profile, err := h.profileService.UpdateDisplayName(r.Context(), user, req.DisplayName)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, profile)
}
