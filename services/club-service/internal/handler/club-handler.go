package handler

import (
	"net/http"

	"github.com/burakmert236/clubscore/common/httpx"
	"github.com/burakmert236/clubscore/common/logger"
	"github.com/burakmert236/clubscore/common/models"
	"github.com/burakmert236/clubscore/services/club-service/internal/service"
	"github.com/gorilla/mux"
)

type ClubHandler struct {
	clubService service.ClubService
	writeErr    func(http.ResponseWriter, *http.Request, error)
	logger      *logger.Logger
}

func NewClubHandler(clubService service.ClubService, writeErr func(http.ResponseWriter, *http.Request, error), logger *logger.Logger) *ClubHandler {
	return &ClubHandler{
		clubService: clubService,
		writeErr:    writeErr,
		logger:      logger,
	}
}

func (h *ClubHandler) Register(r *mux.Router, protect protector) {
	r.HandleFunc("/clubs", h.List).Methods(http.MethodGet)
	r.Handle("/clubs", protect(h.Create)).Methods(http.MethodPost)
	r.HandleFunc("/clubs/{clubId}", h.Get).Methods(http.MethodGet)
	r.Handle("/clubs/{clubId}", protect(h.Delete)).Methods(http.MethodDelete)
}

type createClubRequest struct {
	Name string `json:"name"`
}

func (h *ClubHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createClubRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	club, err := h.clubService.Create(r.Context(), req.Name, callerID(r))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, club)
}

func (h *ClubHandler) List(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.clubService.List(r.Context())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, httpx.NewList[*models.Club](clubs))
}

func (h *ClubHandler) Get(w http.ResponseWriter, r *http.Request) {
	club, err := h.clubService.Get(r.Context(), mux.Vars(r)["clubId"])
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, club)
}

func (h *ClubHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.clubService.Delete(r.Context(), mux.Vars(r)["clubId"]); err != nil {
		h.writeErr(w, r, err)
		return
	}

	httpx.NoContent(w)
}
