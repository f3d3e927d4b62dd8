package handler

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"time"

	apperrors "github.com/burakmert236/clubscore/common/errors"
	"github.com/burakmert236/clubscore/common/httpx"
	"github.com/burakmert236/clubscore/common/logger"
	"github.com/burakmert236/clubscore/common/models"
	"github.com/burakmert236/clubscore/services/club-service/internal/service"
	"github.com/gorilla/mux"
)

type MatchHandler struct {
	matchService service.MatchService
	writeErr     func(http.ResponseWriter, *http.Request, error)
	logger       *logger.Logger
}

func NewMatchHandler(matchService service.MatchService, writeErr func(http.ResponseWriter, *http.Request, error), logger *logger.Logger) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
		writeErr:     writeErr,
		logger:       logger,
	}
}

func (h *MatchHandler) Register(r *mux.Router, protect protector) {
	r.Handle("/matches", protect(h.Create)).Methods(http.MethodPost)
	r.HandleFunc("/matches", h.List).Methods(http.MethodGet)
	r.HandleFunc("/matches/{matchId}", h.Get).Methods(http.MethodGet)
	r.Handle("/matches/{matchId}/score", protect(h.Score)).Methods(http.MethodPost)
	r.Handle("/matches/{matchId}/finalize", protect(h.Finalize)).Methods(http.MethodPost)
}

type createMatchRequest struct {
	ClubId    string          `json:"clubId"`
	Teams     models.Teams    `json:"teams"`
	Score     *models.Score   `json:"score"`
	StartedAt json.RawMessage `json:"startedAt"`
	BestOf    int             `json:"bestOf"`
}

func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	startedAt, err := parseStartedAt(req.StartedAt)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	match, err := h.matchService.Create(r.Context(), service.CreateMatchInput{
		ClubId:    req.ClubId,
		Teams:     req.Teams,
		Score:     req.Score,
		StartedAt: startedAt,
		BestOf:    req.BestOf,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, match)
}

func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matchService.List(r.Context(), r.URL.Query().Get("clubId"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, httpx.NewList[*models.Match](matches))
}

func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	match, err := h.matchService.Get(r.Context(), mux.Vars(r)["matchId"])
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, match)
}

type scoreRequest struct {
	Team  string          `json:"team"`
	Which string          `json:"which"`
	Delta json.RawMessage `json:"delta"`
}

func (h *MatchHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	team := req.Team
	if team == "" {
		team = req.Which
	}

	delta, err := parseDelta(req.Delta)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	match, err := h.matchService.AdjustScore(r.Context(), mux.Vars(r)["matchId"], team, delta)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, match)
}

func (h *MatchHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	match, err := h.matchService.Finalize(r.Context(), mux.Vars(r)["matchId"])
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, match)
}

// maxDelta bounds |delta| for integer and float input alike.
const maxDelta = math.MaxInt32

// parseDelta accepts an integral JSON number or numeric string; absent means +1.
func parseDelta(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 1, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, apperrors.Validation("delta must be a number")
	}

	if i, err := n.Int64(); err == nil {
		if i > maxDelta || i < -maxDelta {
			return 0, apperrors.Validation("delta is out of range")
		}
		return int(i), nil
	}

	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, apperrors.Validation("delta must be a number")
	}
	if f != math.Trunc(f) {
		return 0, apperrors.Validation("delta must be an integer")
	}
	if math.Abs(f) > maxDelta {
		return 0, apperrors.Validation("delta is out of range")
	}
	return int(f), nil
}

// parseStartedAt accepts RFC 3339 text or epoch milliseconds.
func parseStartedAt(raw json.RawMessage) (*time.Time, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		t, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return nil, apperrors.Validation("startedAt must be RFC 3339 or epoch milliseconds")
		}
		return &t, nil
	}

	var millis int64
	if err := json.Unmarshal(raw, &millis); err != nil || millis < 0 {
		return nil, apperrors.Validation("startedAt must be RFC 3339 or epoch milliseconds")
	}
	t := time.UnixMilli(millis).UTC()
	return &t, nil
}
