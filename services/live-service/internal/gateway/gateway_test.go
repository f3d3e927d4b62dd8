package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/burakmert236/clubscore/common/auth"
	apperrors "github.com/burakmert236/clubscore/common/errors"
	"github.com/burakmert236/clubscore/common/logger"
	"github.com/burakmert236/clubscore/services/live-service/internal/service"
)

type broadcastCall struct {
	clubId  string
	message string
}

// stubFanout records socket lifecycle events on channels so tests can wait
// for the asynchronous read loop.
type stubFanout struct {
	connects    chan [2]string
	disconnects chan string
	broadcasts  chan broadcastCall
	connectErr  error
}

func newStubFanout() *stubFanout {
	return &stubFanout{
		connects:    make(chan [2]string, 4),
		disconnects: make(chan string, 4),
		broadcasts:  make(chan broadcastCall, 4),
	}
}

func (f *stubFanout) OnConnect(_ context.Context, connectionId, clubId string) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connects <- [2]string{connectionId, clubId}
	return nil
}

func (f *stubFanout) OnDisconnect(_ context.Context, connectionId string) error {
	f.disconnects <- connectionId
	return nil
}

func (f *stubFanout) Broadcast(_ context.Context, clubId string, message json.RawMessage) (*service.BroadcastReport, error) {
	f.broadcasts <- broadcastCall{clubId: clubId, message: string(message)}
	return &service.BroadcastReport{ClubId: clubId}, nil
}

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, raw string) (*auth.User, error) {
	if raw == "good-token" {
		return &auth.User{Sub: "user-1"}, nil
	}
	return nil, apperrors.New(apperrors.CodeUnauthorized, "Invalid token")
}

func startServer(t *testing.T, fanout service.FanoutService, origins []string) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(Config{PingInterval: time.Minute}, logger.Nop())
	h := NewHandler(hub, fanout, stubVerifier{}, origins, logger.Nop())
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, srv
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("dial %s: %v (status %d)", url, err, status)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitFor[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
	var zero T
	return zero
}

func TestSendReachesSocket(t *testing.T) {
	fanout := newStubFanout()
	hub, srv := startServer(t, fanout, nil)

	conn := dial(t, wsURL(srv, "?clubId=club_1"))
	connected := waitFor(t, fanout.connects, "connect")
	if connected[1] != "club_1" {
		t.Fatalf("club = %s", connected[1])
	}

	if err := hub.Send(context.Background(), connected[0], []byte(`{"ping":true}`)); err != nil {
		t.Fatalf("send: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `{"ping":true}` {
		t.Fatalf("payload = %s", data)
	}

	stats := hub.Stats()
	if stats.TotalConnections != 1 || stats.Clubs["club_1"] != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestMissingClubJoinsGlobal(t *testing.T) {
	fanout := newStubFanout()
	_, srv := startServer(t, fanout, nil)

	dial(t, wsURL(srv, ""))
	connected := waitFor(t, fanout.connects, "connect")
	if connected[1] != "global" {
		t.Fatalf("club = %s", connected[1])
	}
}

func TestSendUnknownConnection(t *testing.T) {
	hub := NewHub(Config{}, logger.Nop())

	err := hub.Send(context.Background(), "nope", []byte("{}"))
	if !errors.Is(err, ErrConnectionGone) {
		t.Fatalf("err = %v, want ErrConnectionGone", err)
	}
}

func TestFrameTriggersBroadcast(t *testing.T) {
	fanout := newStubFanout()
	_, srv := startServer(t, fanout, nil)

	conn := dial(t, wsURL(srv, "?clubId=club_1"))
	waitFor(t, fanout.connects, "connect")

	frames := []string{
		`not json`,
		`{"action":"subscribe","clubId":"club_1"}`,
		`{"action":"message","clubId":"club_2","message":{"hello":1}}`,
	}
	for _, f := range frames {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	call := waitFor(t, fanout.broadcasts, "broadcast")
	if call.clubId != "club_2" || call.message != `{"hello":1}` {
		t.Fatalf("broadcast = %+v", call)
	}

	select {
	case extra := <-fanout.broadcasts:
		t.Fatalf("unexpected broadcast %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCloseTriggersDisconnect(t *testing.T) {
	fanout := newStubFanout()
	hub, srv := startServer(t, fanout, nil)

	conn := dial(t, wsURL(srv, "?clubId=club_1"))
	connected := waitFor(t, fanout.connects, "connect")

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()

	if got := waitFor(t, fanout.disconnects, "disconnect"); got != connected[0] {
		t.Fatalf("disconnected %s, want %s", got, connected[0])
	}
	if err := hub.Send(context.Background(), connected[0], []byte("{}")); !errors.Is(err, ErrConnectionGone) {
		t.Fatalf("send after close = %v", err)
	}
}

func TestRegistrationFailureClosesSocket(t *testing.T) {
	fanout := newStubFanout()
	fanout.connectErr = apperrors.Internal(errors.New("throttled"), "failed to register connection")
	hub, srv := startServer(t, fanout, nil)

	conn := dial(t, wsURL(srv, ""))
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseInternalServerErr) {
		t.Fatalf("read err = %v, want internal close", err)
	}
	if hub.Stats().TotalConnections != 0 {
		t.Fatalf("socket left in hub")
	}
}

func TestInvalidTokenRejected(t *testing.T) {
	_, srv := startServer(t, newStubFanout(), nil)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "?token=bad"), nil)
	if err == nil {
		t.Fatalf("dial should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestOriginAllowList(t *testing.T) {
	_, srv := startServer(t, newStubFanout(), []string{"https://app.example.com"})

	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), header)
	if err == nil {
		t.Fatalf("foreign origin accepted")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("resp = %+v", resp)
	}

	header.Set("Origin", "https://app.example.com")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), header)
	if err != nil {
		t.Fatalf("allowed origin rejected: %v", err)
	}
	_ = conn.Close()
}

func TestStatsEndpoint(t *testing.T) {
	_, srv := startServer(t, newStubFanout(), nil)

	resp, err := http.Get(srv.URL + "/ws/stats")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var stats Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusOK || stats.TotalConnections != 0 {
		t.Fatalf("status=%d stats=%+v", resp.StatusCode, stats)
	}
}

func TestHubCloseIsSafeTwice(t *testing.T) {
	var wg sync.WaitGroup
	hub := NewHub(Config{}, logger.Nop())
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Close()
		}()
	}
	wg.Wait()
}

func TestDrainWaitsForDisconnect(t *testing.T) {
	fanout := newStubFanout()
	hub := NewHub(Config{PingInterval: time.Minute}, logger.Nop())
	h := NewHandler(hub, fanout, nil, nil, logger.Nop())
	srv := httptest.NewServer(NewRouter(h))
	defer srv.Close()

	dial(t, wsURL(srv, "?clubId=club_1"))
	connected := waitFor(t, fanout.connects, "connect")

	hub.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Drain(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}

	select {
	case got := <-fanout.disconnects:
		if got != connected[0] {
			t.Fatalf("disconnected %s", got)
		}
	default:
		t.Fatalf("drain returned before disconnect ran")
	}
}
