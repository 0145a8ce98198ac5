// internal/app/features/errors/errors.go
package errors

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/stratasite/internal/app/store/content"
	"github.com/dalemusser/stratasite/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ErrorLogger wraps the zap logger for error logging.
type ErrorLogger struct {
	logger *zap.Logger
}

// NewErrorLogger creates a new ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{logger: logger}
}

// Log logs an error with the given message and error.
func (e *ErrorLogger) Log(r *http.Request, msg string, err error) {
	e.LogWithFields(r, msg, err)
}

// LogWithFields logs an error with additional fields. Transient content
// failures and client disconnects are logged at Warn; everything else at
// Error.
func (e *ErrorLogger) LogWithFields(r *http.Request, msg string, err error, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	}, fields...)

	switch {
	case stderrors.Is(err, context.Canceled):
		e.logger.Debug(msg, allFields...)
	case content.IsTransient(err):
		e.logger.Warn(msg, append(allFields, zap.Bool("retryable", true))...)
	default:
		e.logger.Error(msg, allFields...)
	}
}

// Fail logs err and renders the 500 page. The store error never reaches
// the response body.
func (e *ErrorLogger) Fail(w http.ResponseWriter, r *http.Request, msg string, err error, fields ...zap.Field) {
	e.LogWithFields(r, msg, err, fields...)
	if stderrors.Is(err, context.Canceled) {
		return
	}
	InternalError(w, r)
}

// Handler provides error page handlers.
type Handler struct{}

// NewHandler creates a new error Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Unauthorized renders the 401 unauthorized page.
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	Unauthorized(w, r)
}

// NotFound renders the 404 not found page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	NotFound(w, r)
}

// InternalError renders the 500 internal server error page.
func (h *Handler) InternalError(w http.ResponseWriter, r *http.Request) {
	InternalError(w, r)
}

// Unauthorized renders the 401 page.
func Unauthorized(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusUnauthorized, "Unauthorized", "errors/unauthorized")
}

// NotFound renders the 404 page. Feature handlers call it when the
// requested document is absent.
func NotFound(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusNotFound, "Not Found", "errors/not_found")
}

// InternalError renders the 500 page.
func InternalError(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusInternalServerError, "Server Error", "errors/internal")
}

func render(w http.ResponseWriter, r *http.Request, status int, title, name string) {
	vm := viewdata.New(r).WithMeta(title, "", true)

	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	templates.Render(w, r, name, vm)
}
