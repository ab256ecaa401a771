// internal/app/features/errors/errors.go
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/vitrine/internal/app/catalog"
	"github.com/dalemusser/vitrine/internal/domain/models"
	"go.uber.org/zap"
)

// ErrorLogger logs failed requests and writes the JSON error body.
type ErrorLogger struct {
	Logger *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Logger: logger}
}

// Body is the JSON shape of every error response.
type Body struct {
	Error  string              `json:"error"`
	Fields []models.FieldError `json:"fields,omitempty"`
}

// StatusCode maps the catalog error taxonomy onto HTTP statuses.
func StatusCode(err error) int {
	var (
		verr *catalog.ValidationError
		perr *catalog.ParseError
		rerr *catalog.RemoteError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case stderrors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, catalog.ErrConflict):
		return http.StatusConflict
	case stderrors.As(err, &perr):
		return http.StatusBadRequest
	case stderrors.As(err, &rerr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Log writes err with the status StatusCode picks. Server-side failures
// are logged at error level, client mistakes at info.
func (e *ErrorLogger) Log(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := StatusCode(err)
	body := Body{Error: userMessage(status, err)}

	var verr *catalog.ValidationError
	if stderrors.As(err, &verr) {
		body.Fields = verr.Fields
	}

	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= 500 {
		e.Logger.Error(msg, fields...)
	} else {
		e.Logger.Info(msg, fields...)
	}
	WriteJSON(w, status, body)
}

// LogBadRequest answers 400 with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Logger.Info(msg,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	WriteJSON(w, http.StatusBadRequest, Body{Error: userMsg})
}

// LogServerError answers 500 with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Logger.Error(msg,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	WriteJSON(w, http.StatusInternalServerError, Body{Error: userMsg})
}

func userMessage(status int, err error) string {
	switch status {
	case http.StatusUnprocessableEntity:
		return "Dados inválidos."
	case http.StatusNotFound:
		return "Imóvel não encontrado."
	case http.StatusConflict:
		return "O imóvel foi alterado por outra pessoa. Recarregue e tente novamente."
	case http.StatusBadRequest:
		return err.Error()
	case http.StatusBadGateway:
		return "Não foi possível falar com o banco de dados."
	default:
		return "Erro interno."
	}
}
