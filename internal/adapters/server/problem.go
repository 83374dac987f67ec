package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.trai.ch/aqtcache/internal/core/domain"
)

// Problem is an RFC 7807 problem details body.
type Problem struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// ContentTypeProblemJSON is the Content-Type for problem responses.
const ContentTypeProblemJSON = "application/problem+json"

func writeProblem(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", ContentTypeProblemJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&Problem{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// statusFor maps controller errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case matches(err, domain.ErrNotificationNotFound), matches(err, domain.ErrClientNotFound):
		return http.StatusNotFound
	case matches(err, domain.ErrNoActiveController), matches(err, domain.ErrControllerRedundant):
		return http.StatusConflict
	case matches(err, domain.ErrUnknownEvent):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// matches reports whether err is, or was annotated from, sentinel.
func matches(err, sentinel error) bool {
	return errors.Is(err, sentinel) || strings.Contains(err.Error(), sentinel.Error())
}
