package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SlpAus/quiz-share-backend/internal/platform/apperr"
)

// Failure is the error envelope every rejected request produces:
// {"response":{"data":{"msg":"..."}}}.
type Failure struct {
	Kind     apperr.Kind     `json:"-"`
	Response FailureResponse `json:"response"`
}

type FailureResponse struct {
	Data FailureData `json:"data"`
}

type FailureData struct {
	Msg string `json:"msg"`
}

func newFailure(kind apperr.Kind, msg string) *Failure {
	return &Failure{Kind: kind, Response: FailureResponse{Data: FailureData{Msg: msg}}}
}

func (f *Failure) Error() string {
	return f.Response.Data.Msg
}

// Is lets errors.Is match a Failure against the apperr kind sentinels.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*apperr.Error)
	return ok && t.Kind == f.Kind
}

// Msg returns the user-facing message.
func (f *Failure) Msg() string {
	return f.Response.Data.Msg
}

// Status maps the failure kind to an HTTP status code.
func (f *Failure) Status() int {
	return StatusFor(f.Kind)
}

// StatusFor maps an apperr kind to an HTTP status code.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.Validation:
		return http.StatusBadRequest
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.NotImplemented:
		return http.StatusNotImplemented
	case apperr.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// toFailure converts any handler error into a Failure. Internal errors are
// logged and reported as "Server error".
func toFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Kind != apperr.Internal && appErr.Msg != "" {
		return newFailure(appErr.Kind, appErr.Msg)
	}
	slog.Error("request failed", "err", err)
	return newFailure(apperr.Internal, "Server error")
}

// Message extracts the user-facing message from err, or returns fallback
// when err carries none.
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var f *Failure
	if errors.As(err, &f) && f.Msg() != "" {
		return f.Msg()
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Msg != "" {
		return appErr.Msg
	}
	return fallback
}
