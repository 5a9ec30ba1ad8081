// Package v1handler implements the v1 contact lookup endpoints.
package v1handler

import (
	"contactfinder/internal/contact"
	"contactfinder/pkg/logger"
	"contactfinder/pkg/serrors"
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Deps groups the services the handlers call into.
type Deps struct {
	Finder contact.Finder
}

type Handler struct {
	deps Deps
}

func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string
	Message string
}

// ErrorStatusCode pairs an error body with its HTTP status.
type ErrorStatusCode struct {
	StatusCode int
	Response   ErrorResponse
}

type errorClass struct {
	status  int
	message string
	// exposeMessage lets the message attached to the error reach the caller
	exposeMessage bool
}

//nolint: gochecknoglobals
var errorClasses = map[serrors.Kind]errorClass{
	serrors.ErrBadRequest:      {status: http.StatusBadRequest, message: "invalid request", exposeMessage: true},
	serrors.ErrNotFound:        {status: http.StatusNotFound, message: "resource not found", exposeMessage: true},
	serrors.ErrRetrievalFailed: {status: http.StatusBadGateway, message: "could not retrieve website", exposeMessage: true},
	serrors.ErrInternal:        {status: http.StatusInternalServerError, message: "internal error"},
}

// NewError maps err to an HTTP status and a body that is safe to show to the
// caller. Internal details are logged, never returned.
func (h Handler) NewError(ctx context.Context, err error) *ErrorStatusCode {
	kind := serrors.KindOf(err)
	class, ok := errorClasses[kind]
	if !ok {
		kind, class = serrors.ErrInternal, errorClasses[serrors.ErrInternal]
	}

	message := class.message
	var se *serrors.Error
	if class.exposeMessage && errors.As(err, &se) && se.Message() != "" {
		message = se.Message()
	}

	if class.status >= http.StatusInternalServerError {
		logger.Error(ctx, "request failed", zap.String("code", kind.Error()), zap.Error(err))
	} else {
		logger.Info(ctx, "request rejected", zap.String("code", kind.Error()), zap.Error(err))
	}

	return &ErrorStatusCode{
		StatusCode: class.status,
		Response:   ErrorResponse{Code: kind.Error(), Message: message},
	}
}

func (h Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	res := h.NewError(ctx, err)
	writeJSON(w, res.StatusCode, EncodeError(res.Response))
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
