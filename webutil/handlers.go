package webutil

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// AppHandler represents a handler function that returns an error.
type AppHandler func(w http.ResponseWriter, r *http.Request) error

// MakeHandler adapts an AppHandler to the standard http.HandlerFunc signature.
// It executes the AppHandler and handles any returned error by logging appropriately
// and sending a standardized JSON error response.
func MakeHandler(handler AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		if err := handler(ww, r); err != nil {
			WriteError(ww, r, err)
		}
		// If err is nil, the handler is assumed to have written its own successful response.
	}
}

// WriteError maps err to a status code and JSON body. HTTPErrors keep their
// code and message, sql.ErrNoRows becomes 404 and anything else is a 500
// whose cause is only logged.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *HTTPError
	var publicMessage string
	var statusCode int

	switch {
	case errors.As(err, &httpErr):
		statusCode = httpErr.Code
		publicMessage = httpErr.Message
		logLevel := slog.LevelWarn // Treat client errors as warnings server-side
		if statusCode >= 500 {
			logLevel = slog.LevelError
		}
		attrs := []any{
			"code", httpErr.Code,
			"msg", httpErr.Message,
			"path", r.URL.Path,
			"method", r.Method,
		}
		// Log the underlying cause if present and different from the public message
		if cause := errors.Unwrap(httpErr); cause != nil && cause.Error() != publicMessage {
			attrs = append(attrs, "cause", cause)
		}
		slog.Log(r.Context(), logLevel, "Client error response", attrs...)
		for key, values := range httpErr.Header {
			for _, v := range values {
				w.Header().Add(key, v)
			}
		}

	case errors.Is(err, sql.ErrNoRows):
		statusCode = http.StatusNotFound
		publicMessage = msgNotFound
		slog.Info("Resource not found (sql.ErrNoRows)", "path", r.URL.Path, "method", r.Method, "error", err)

	default:
		statusCode = http.StatusInternalServerError
		publicMessage = msgInternalServer
		slog.Error("Unhandled internal error", "path", r.URL.Path, "method", r.Method, "error", err)
	}

	if HasResponseWriterSentHeader(w) {
		slog.Warn("Handler returned error after writing response header",
			"path", r.URL.Path,
			"method", r.Method,
			"error", err,
		)
		// Cannot send another response, just log.
		return
	}

	RespondWithError(w, statusCode, publicMessage)
}

// HasResponseWriterSentHeader reports whether a status line already went out.
// Only writers wrapped by chi's WrapResponseWriter can tell; others are
// assumed untouched.
func HasResponseWriterSentHeader(w http.ResponseWriter) bool {
	ww, ok := w.(middleware.WrapResponseWriter)
	return ok && ww.Status() != 0
}
