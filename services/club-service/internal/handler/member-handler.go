package handler

import (
	"net/http"

	"github.com/burakmert236/clubscore/common/httpx"
	"github.com/burakmert236/clubscore/common/logger"
	"github.com/burakmert236/clubscore/common/models"
	"github.com/burakmert236/clubscore/services/club-service/internal/service"
	"github.com/gorilla/mux"
)

type MemberHandler struct {
	memberService service.MemberService
	writeErr      func(http.ResponseWriter, *http.Request, error)
	logger        *logger.Logger
}

func NewMemberHandler(memberService service.MemberService, writeErr func(http.ResponseWriter, *http.Request, error), logger *logger.Logger) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
		writeErr:      writeErr,
		logger:        logger,
	}
}

func (h *MemberHandler) Register(r *mux.Router, protect protector) {
	r.Handle("/clubs/{clubId}/members", protect(h.Join)).Methods(http.MethodPost)
	r.HandleFunc("/clubs/{clubId}/members", h.List).Methods(http.MethodGet)
}

type joinResponse struct {
	OK            bool `json:"ok"`
	AlreadyMember bool `json:"alreadyMember"`
}

func (h *MemberHandler) Join(w http.ResponseWriter, r *http.Request) {
	result, err := h.memberService.Join(r.Context(), mux.Vars(r)["clubId"], callerID(r))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, joinResponse{OK: true, AlreadyMember: result.AlreadyMember})
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.memberService.ListMembers(r.Context(), mux.Vars(r)["clubId"])
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, httpx.NewList[models.Member](members))
}
