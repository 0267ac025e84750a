package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dtroode/userauth/internal/api/apierror"
)

// ErrorBody is the JSON shape of every error response. Message is a string, or
// a list of strings for validation failures.
type ErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    any    `json:"message"`
	Error      string `json:"error"`
}

// WriteError writes err as an ErrorBody with the status it maps to.
func WriteError(w http.ResponseWriter, err error) {
	apiErr := apierror.From(err)

	var message any = apiErr.Message
	if len(apiErr.Violations) > 0 {
		message = apiErr.Messages()
	}

	writeJSON(w, apiErr.HTTPStatus, ErrorBody{
		StatusCode: apiErr.HTTPStatus,
		Message:    message,
		Error:      http.StatusText(apiErr.HTTPStatus),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
