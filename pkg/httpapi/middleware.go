package httpapi

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/authctx"
	"github.com/folkbase/folkbase/pkg/core/services"
	"github.com/folkbase/folkbase/pkg/utils/logging"
)

func withLogging(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		logger.Info("http",
			zap.String(logging.FieldMethod, r.Method),
			zap.String(logging.FieldPath, r.URL.Path),
			zap.Int(logging.FieldStatus, sw.status),
			zap.Duration(logging.FieldDuration, time.Since(start)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) { w.status = code; w.ResponseWriter.WriteHeader(code) }

// Flush passes through so live streams work behind the logger
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// bearerToken reads the session token from the Authorization header. Browsers
// cannot set headers on an EventSource, so ?access_token= is accepted too.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}

// authed resolves the session token to a principal, creating the member
// profile on first sign-in, and puts it on the request context.
func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		claims, err := s.auth.Verify(r.Context(), token)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		profile, err := services.EnsureProfile(r.Context(), s.db, s.team, s.logger, claims.UID, claims.Email)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		ctx := authctx.WithUser(r.Context(), authctx.Principal{
			UID:       claims.UID,
			MemberID:  profile.Member.ID,
			Role:      profile.Member.Role,
			Anonymous: claims.Anonymous,
		})
		next(w, r.WithContext(ctx))
	}
}

// managed is authed plus a management role
func (s *Server) managed(next http.HandlerFunc) http.HandlerFunc {
	return s.authed(func(w http.ResponseWriter, r *http.Request) {
		if !principal(r).CanManage() {
			s.fail(w, r, services.ErrForbidden)
			return
		}
		next(w, r)
	})
}

func principal(r *http.Request) authctx.Principal {
	p, _ := authctx.FromContext(r.Context())
	return p
}
