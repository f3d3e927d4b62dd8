package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/burakmert236/clubscore/common/auth"
	apperrors "github.com/burakmert236/clubscore/common/errors"
	"github.com/burakmert236/clubscore/common/httpx"
	"github.com/burakmert236/clubscore/common/logger"
	"github.com/burakmert236/clubscore/common/utils"
	"github.com/burakmert236/clubscore/services/live-service/internal/registry"
	"github.com/burakmert236/clubscore/services/live-service/internal/service"
)

const (
	actionMessage     = "message"
	disconnectTimeout = 5 * time.Second
)

// Frame is what browsers send over an open socket.
type Frame struct {
	Action  string          `json:"action,omitempty"`
	ClubId  string          `json:"clubId"`
	Message json.RawMessage `json:"message,omitempty"`
}

type Handler struct {
	hub      *Hub
	fanout   service.FanoutService
	verifier auth.TokenVerifier
	upgrader websocket.Upgrader
	writeErr auth.ErrorWriter
	logger   *logger.Logger

	active sync.WaitGroup
}

// NewHandler accepts a nil verifier, which leaves sockets anonymous. With a
// verifier, a supplied ?token= must verify.
func NewHandler(
	hub *Hub,
	fanout service.FanoutService,
	verifier auth.TokenVerifier,
	allowedOrigins []string,
	logger *logger.Logger,
) *Handler {
	return &Handler{
		hub:      hub,
		fanout:   fanout,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		writeErr: httpx.ErrorWriter(logger),
		logger:   logger.With("component", "ws-handler"),
	}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/ws", h.ServeWS).Methods(http.MethodGet)
	r.HandleFunc("/ws/stats", h.GetStats).Methods(http.MethodGet)
}

func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	if token := r.URL.Query().Get("token"); token != "" && h.verifier != nil {
		if _, err := h.verifier.Verify(r.Context(), token); err != nil {
			h.writeErr(w, r, err)
			return
		}
	}

	clubId := registry.NormalizeClubID(r.URL.Query().Get("clubId"))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Debug("Upgrade failed", "error", err)
		return
	}

	h.active.Add(1)
	defer h.active.Done()

	connectionId := utils.NewConnectionID()
	s := h.hub.register(connectionId, clubId, conn)

	// The request context ends with the hijacked connection's handler, so
	// registry calls run detached from it.
	ctx := context.WithoutCancel(r.Context())

	if err := h.fanout.OnConnect(ctx, connectionId, clubId); err != nil {
		h.logger.Error("Failed to register connection", "connection_id", connectionId, "error", err)
		h.hub.unregister(s)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "registration failed"),
			time.Now().Add(time.Second))
		_ = conn.Close()
		return
	}

	h.logger.Info("Connection established", "connection_id", connectionId, "club_id", clubId)

	go h.hub.writePump(s)
	h.hub.readPump(s, func(data []byte) {
		h.handleFrame(ctx, connectionId, data)
	})

	h.hub.unregister(s)

	disconnectCtx, cancel := context.WithTimeout(ctx, disconnectTimeout)
	defer cancel()
	if err := h.fanout.OnDisconnect(disconnectCtx, connectionId); err != nil {
		h.logger.Error("Failed to remove connection", "connection_id", connectionId, "error", err)
	}

	h.logger.Info("Connection closed", "connection_id", connectionId)
}

// Drain waits for open sockets to finish their disconnect path. Call it
// after Hub.Close.
func (h *Handler) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.active.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handler) handleFrame(ctx context.Context, connectionId string, data []byte) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		h.logger.Debug("Ignoring malformed frame", "connection_id", connectionId, "error", err)
		return
	}
	if frame.Action != "" && frame.Action != actionMessage {
		h.logger.Debug("Ignoring frame", "connection_id", connectionId, "action", frame.Action)
		return
	}

	report, err := h.fanout.Broadcast(ctx, frame.ClubId, frame.Message)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeValidation {
			h.logger.Debug("Rejected frame", "connection_id", connectionId, "error", err)
			return
		}
		h.logger.Error("Broadcast failed", "connection_id", connectionId, "club_id", frame.ClubId, "error", err)
		return
	}

	h.logger.Debug("Frame broadcast",
		"connection_id", connectionId,
		"club_id", report.ClubId,
		"attempted", report.Attempted,
		"failed", report.Failed,
	)
}

func (h *Handler) GetStats(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.hub.Stats())
}

// originChecker mirrors the CORS allow-list. Requests without an Origin
// header come from non-browser clients and are accepted.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = struct{}{}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
