package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/auth"
	"github.com/folkbase/folkbase/pkg/core/quiz"
	"github.com/folkbase/folkbase/pkg/core/services"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/utils/logging"
)

const maxBodyBytes = 1 << 20

func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, r.Body)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}

// errorStatus maps a service error to its HTTP status and client message
func errorStatus(err error) (int, string) {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, auth.ErrTooManyAttempts):
		return http.StatusTooManyRequests, auth.Message(err)
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest, auth.Message(err)
	case errors.Is(err, auth.ErrEmailInUse):
		return http.StatusConflict, auth.Message(err)
	case errors.Is(err, auth.ErrMailerUnavailable):
		return http.StatusServiceUnavailable, auth.Message(err)
	case auth.IsAuthError(err):
		return http.StatusUnauthorized, auth.Message(err)
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, db.ErrNotFound), errors.Is(err, services.ErrNoSession):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, db.ErrOutOfStock),
		errors.Is(err, db.ErrConflict),
		errors.Is(err, services.ErrPollClosed),
		errors.Is(err, quiz.ErrFinished):
		return http.StatusConflict, err.Error()
	case errors.Is(err, services.ErrNotConcert),
		errors.Is(err, quiz.ErrNoQuestions),
		errors.Is(err, quiz.ErrNotAnswered),
		errors.Is(err, quiz.ErrNotLastQuestion),
		errors.Is(err, quiz.ErrInvalidAnswer):
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, "internal error"
}

// fail writes err as a JSON error. Unexpected errors are logged.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.String(logging.FieldMethod, r.Method),
			zap.String(logging.FieldPath, r.URL.Path),
			zap.Error(err))
	}
	writeError(w, status, msg)
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	s.logger.Debug("Rejected request body", zap.Error(err))
	writeError(w, http.StatusBadRequest, "invalid payload")
}
