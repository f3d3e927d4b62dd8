// Package httpx holds the JSON envelope and middleware shared by the HTTP servers.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "github.com/burakmert236/clubscore/common/errors"
	"github.com/burakmert236/clubscore/common/logger"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// List is the single envelope used for every collection.
type List[T any] struct {
	Items []T `json:"items"`
}

func NewList[T any](items []T) List[T] {
	if items == nil {
		items = []T{}
	}
	return List[T]{Items: items}
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// ErrorWriter maps errors onto status codes. The wrapped cause is logged,
// never sent.
func ErrorWriter(log *logger.Logger) func(w http.ResponseWriter, r *http.Request, err error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		code := apperrors.CodeOf(err)
		message := "Internal server error"

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Message != "" && code != apperrors.CodeInternal {
			message = appErr.Message
		}

		status := apperrors.HTTPStatus(code)
		if status >= http.StatusInternalServerError {
			log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		} else {
			log.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "code", code, "error", err)
		}

		WriteJSON(w, status, ErrorBody{Code: code, Message: message})
	}
}

// DecodeJSON decodes an optional body; an empty body leaves v untouched.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperrors.Wrap(err, apperrors.CodeValidation, "Invalid JSON body")
}
