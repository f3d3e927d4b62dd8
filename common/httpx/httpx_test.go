package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/burakmert236/clubscore/common/errors"
	"github.com/burakmert236/clubscore/common/logger"
)

func TestErrorWriterHidesInternalCause(t *testing.T) {
	write := ErrorWriter(logger.Nop())

	rec := httptest.NewRecorder()
	write(rec, httptest.NewRequest(http.MethodGet, "/matches/x", nil),
		apperrors.Internal(fmt.Errorf("dynamodb: throttled"), "failed to get match"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body ErrorBody
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Code != apperrors.CodeInternal || strings.Contains(body.Message, "throttled") {
		t.Fatalf("body = %+v", body)
	}
}

func TestErrorWriterStatusMapping(t *testing.T) {
	write := ErrorWriter(logger.Nop())
	cases := map[string]int{
		apperrors.CodeValidation:   400,
		apperrors.CodeNotLive:      400,
		apperrors.CodeUnauthorized: 401,
		apperrors.CodeNotFound:     404,
		apperrors.CodeConflict:     409,
	}
	for code, want := range cases {
		rec := httptest.NewRecorder()
		write(rec, httptest.NewRequest(http.MethodGet, "/", nil), apperrors.New(code, "nope"))
		if rec.Code != want {
			t.Errorf("%s: status = %d, want %d", code, rec.Code, want)
		}
		var body ErrorBody
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		if body.Code != code || body.Message != "nope" {
			t.Errorf("%s: body = %+v", code, body)
		}
	}
}

func TestNewListNeverNull(t *testing.T) {
	b, _ := json.Marshal(NewList[string](nil))
	if string(b) != `{"items":[]}` {
		t.Fatalf("got %s", b)
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct{ Name string }

	req := httptest.NewRequest(http.MethodPost, "/clubs", strings.NewReader(""))
	if err := DecodeJSON(req, &v); err != nil {
		t.Fatalf("empty body: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/clubs", strings.NewReader("{nope"))
	if err := DecodeJSON(req, &v); !apperrors.Is(err, apperrors.CodeValidation) {
		t.Fatalf("bad body code = %s", apperrors.CodeOf(err))
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"http://localhost:5173"}).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodOptions, "/clubs", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow origin = %q", got)
	}
}
