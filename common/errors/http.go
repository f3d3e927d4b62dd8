package errors

import "net/http"

func HTTPStatus(code string) int {
	switch code {
	case CodeValidation, CodeNotLive:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
