// Package httpapi is the JSON API and live feed served to the web client.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/folkbase/folkbase/internal/config"
	"github.com/folkbase/folkbase/pkg/auth"
	"github.com/folkbase/folkbase/pkg/blob"
	"github.com/folkbase/folkbase/pkg/core/checkin"
	"github.com/folkbase/folkbase/pkg/core/quiz"
	"github.com/folkbase/folkbase/pkg/core/services"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/live"
	"github.com/folkbase/folkbase/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

// Options wires the server to its backing services. Mailer may be nil, in
// which case notifications are rejected. Files, when set, serves uploaded
// blobs under /blobs/ for stores that have no public URL of their own.
type Options struct {
	Database db.Database
	Blobs    blob.Store
	Files    http.Handler
	Auth     *auth.Service
	Bus      *live.Bus
	Mailer   services.GmailClient
	Config   *config.Config
	Logger   *zap.Logger
}

type Server struct {
	db       db.Database
	blobs    blob.Store
	auth     *auth.Service
	bus      *live.Bus
	files    http.Handler
	mailer   services.GmailClient
	cfg      *config.Config
	team     services.TeamInfo
	logger   *zap.Logger
	quizzes  *services.Registry[*quiz.Session]
	scanners *services.Registry[*checkin.Scanner]
	now      func() time.Time
}

func NewServer(opts Options) *Server {
	return &Server{
		db:       opts.Database,
		blobs:    opts.Blobs,
		auth:     opts.Auth,
		bus:      opts.Bus,
		files:    opts.Files,
		mailer:   opts.Mailer,
		cfg:      opts.Config,
		team:     services.TeamInfo{ID: opts.Config.TeamID, Name: opts.Config.TeamName},
		logger:   opts.Logger,
		quizzes:  services.NewQuizSessions(),
		scanners: services.NewCheckInScanners(),
		now:      time.Now,
	}
}

// Handler returns the routed API behind CORS and request logging
func (s *Server) Handler() http.Handler {
	metrics.Register()

	mux := http.NewServeMux()
	s.routes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())
	if s.files != nil {
		mux.Handle("GET /blobs/", http.StripPrefix("/blobs", s.files))
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return withLogging(s.logger, c.Handler(mux))
}

// Run serves on addr until ctx is cancelled, then drains open requests
func (s *Server) Run(ctx context.Context, addr string) error {
	stopRoster := s.trackRoster(ctx)
	defer stopRoster()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
