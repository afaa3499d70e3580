package handler

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/snaketips/pkg/logger"
	"github.com/dmitrymomot/snaketips/pkg/requestid"
)

// logLevel picks Warn for client errors and Error for server errors.
func logLevel(status int) slog.Level {
	if status >= http.StatusBadRequest && status < http.StatusInternalServerError {
		return slog.LevelWarn
	}
	return slog.LevelError
}

// NewErrorHandler logs every failure and renders it with JSONError.
// Not-found responses are logged at debug level only.
func NewErrorHandler(log *slog.Logger) ErrorHandler {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx Context, err error) {
		r := ctx.Request()
		status, _ := Classify(err)

		level := logLevel(status)
		if status == http.StatusNotFound {
			level = slog.LevelDebug
		}

		log.LogAttrs(r.Context(), level, "request error",
			logger.RequestID(requestid.FromContext(r.Context())),
			logger.Error(err),
			slog.Int("status_code", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		if renderErr := JSONError(err).Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.Error("failed to render error response",
				logger.Error(renderErr),
				logger.Component("error_handler"),
			)
		}
	}
}
