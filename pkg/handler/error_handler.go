package handler

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/fdfskit/pkg/logger"
)

func isClientError(statusCode int) bool {
	return statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError
}

// determineLogLevel maps HTTP status codes to log levels.
func determineLogLevel(statusCode int) slog.Level {
	if isClientError(statusCode) {
		return slog.LevelWarn
	}
	return slog.LevelError
}

// NewErrorHandler returns an ErrorHandler that maps err through classify,
// logs it at warn for 4xx and error for 5xx, and renders a JSON error.
// A nil classify keeps errors as they are.
func NewErrorHandler(log *slog.Logger, classify func(error) error) ErrorHandler {
	if log == nil {
		log = logger.Nop()
	}

	return func(w http.ResponseWriter, r *http.Request, err error) {
		if classify != nil {
			err = classify(err)
		}

		resp := &jsonResponse{status: http.StatusInternalServerError}
		resp.body.Error = errorToDetail(err, &resp.status)

		log.Log(r.Context(), determineLogLevel(resp.status), "request failed",
			slog.String("method", r.Method),
			logger.Path(r.URL.Path),
			slog.Int("status", resp.status),
			slog.String("code", resp.body.Error.Code),
			logger.Error(err),
		)

		_ = resp.Render(w, r)
	}
}
