// Package auth is the identity provider: email/password and anonymous
// accounts, signed session tokens, password resets, and the sign-in state feed.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/live"
	"github.com/folkbase/folkbase/pkg/metrics"
)

const (
	// StateTopic is the bus topic carrying sign-in and sign-out notifications
	StateTopic = "auth"

	minPasswordLength = 6
	resetTTL          = time.Hour
)

// Mailer is the outbound email relay
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type Config struct {
	SessionSecret     []byte
	CustomTokenSecret []byte
	SessionTTL        time.Duration
	// ResetURL is the page that completes a password reset; the token is appended as ?token=
	ResetURL string
}

// Session is the result of a successful sign-in
type Session struct {
	Token     string    `json:"token"`
	UID       string    `json:"uid"`
	Email     string    `json:"email,omitempty"`
	Anonymous bool      `json:"anonymous"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// StateChange is one sign-in state notification
type StateChange struct {
	UID      string `json:"uid"`
	SignedIn bool   `json:"signedIn"`
}

type Service struct {
	store    db.AccountStore
	bus      *live.Bus
	mailer   Mailer
	logger   *zap.Logger
	cfg      Config
	throttle *throttle
	validate *validator.Validate
	now      func() time.Time
}

func NewService(store db.AccountStore, bus *live.Bus, mailer Mailer, logger *zap.Logger, cfg Config) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return &Service{
		store:    store,
		bus:      bus,
		mailer:   mailer,
		logger:   logger,
		cfg:      cfg,
		throttle: newThrottle(),
		validate: validator.New(),
		now:      time.Now,
	}
}

func (s *Service) checkEmail(email string) error {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

func checkPassword(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func (s *Service) startSession(account *db.Account) (*Session, error) {
	token, claims, err := signSession(s.cfg.SessionSecret, account.UID, account.Email, account.Anonymous, s.now(), s.cfg.SessionTTL)
	if err != nil {
		return nil, err
	}

	if s.bus != nil {
		s.bus.Publish(live.Change{Collection: StateTopic, Kind: live.KindAdded, ID: account.UID})
	}
	return &Session{
		Token:     token,
		UID:       account.UID,
		Email:     account.Email,
		Anonymous: account.Anonymous,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// SignUp creates an email/password account and signs it in
func (s *Service) SignUp(ctx context.Context, email, password string) (session *Session, err error) {
	defer func() { metrics.SignIns.WithLabelValues("signup", metrics.Outcome(err)).Inc() }()

	email = strings.TrimSpace(email)
	if err := s.checkEmail(email); err != nil {
		return nil, err
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &db.Account{UID: uuid.NewString(), Email: email, PasswordHash: string(hash)}
	if err := s.store.InsertAccount(ctx, account); err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("Account created", zap.String("uid", account.UID))
	return s.startSession(account)
}

// SignIn verifies an email and password. After too many failures for one
// email, attempts are refused until the window passes.
func (s *Service) SignIn(ctx context.Context, email, password string) (session *Session, err error) {
	defer func() { metrics.SignIns.WithLabelValues("password", metrics.Outcome(err)).Inc() }()

	now := s.now()
	if s.throttle.blocked(email, now) {
		s.logger.Warn("Sign-in throttled", zap.String("email", email))
		return nil, ErrTooManyAttempts
	}

	account, err := s.store.GetAccountByEmail(ctx, strings.TrimSpace(email))
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil || account.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		s.throttle.fail(email, now)
		return nil, ErrInvalidCredentials
	}

	s.throttle.reset(email)
	return s.startSession(account)
}

// SignInAnonymously creates a fresh anonymous account
func (s *Service) SignInAnonymously(ctx context.Context) (session *Session, err error) {
	defer func() { metrics.SignIns.WithLabelValues("anonymous", metrics.Outcome(err)).Inc() }()

	account := &db.Account{UID: uuid.NewString(), Anonymous: true}
	if err := s.store.InsertAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create anonymous account: %w", err)
	}
	return s.startSession(account)
}

// SignInWithCustomToken accepts a token minted by trusted tooling. The
// account for its subject is created on first use.
func (s *Service) SignInWithCustomToken(ctx context.Context, token string) (session *Session, err error) {
	defer func() { metrics.SignIns.WithLabelValues("custom", metrics.Outcome(err)).Inc() }()

	if len(s.cfg.CustomTokenSecret) == 0 {
		return nil, ErrInvalidToken
	}
	claims, err := parseHS256(s.cfg.CustomTokenSecret, token, &Claims{}, s.now)
	if err != nil {
		return nil, err
	}
	uid := claims.Subject
	if uid == "" {
		return nil, ErrInvalidToken
	}

	account, err := s.store.GetAccount(ctx, uid)
	if errors.Is(err, db.ErrNotFound) {
		account = &db.Account{UID: uid}
		if err := s.store.InsertAccount(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	return s.startSession(account)
}

// Verify checks a session token's signature, expiry and revocation
func (s *Service) Verify(ctx context.Context, token string) (*Claims, error) {
	claims, err := parseHS256(s.cfg.SessionSecret, token, &Claims{}, s.now)
	if err != nil {
		return nil, err
	}

	revoked, err := s.store.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// SignOut revokes the session token
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.Verify(ctx, token)
	if err != nil {
		return err
	}

	if err := s.store.RevokeToken(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	if s.bus != nil {
		s.bus.Publish(live.Change{Collection: StateTopic, Kind: live.KindRemoved, ID: claims.UID})
	}
	s.logger.Info("Signed out", zap.String("uid", claims.UID))
	return nil
}

// SendPasswordReset emails a one-hour reset link. Unknown addresses get no
// email and no error, so callers cannot tell which accounts exist.
func (s *Service) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := s.checkEmail(email); err != nil {
		return err
	}
	if s.mailer == nil {
		return ErrMailerUnavailable
	}

	account, err := s.store.GetAccountByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		s.logger.Info("Password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up account: %w", err)
	}

	token, hash, err := newResetToken()
	if err != nil {
		return err
	}
	reset := &db.PasswordReset{TokenHash: hash, UID: account.UID, ExpiresAt: s.now().Add(resetTTL)}
	if err := s.store.InsertPasswordReset(ctx, reset); err != nil {
		return fmt.Errorf("failed to store password reset: %w", err)
	}

	link := s.cfg.ResetURL + "?token=" + url.QueryEscape(token)
	body := fmt.Sprintf("Otrzymaliśmy prośbę o zmianę hasła.\n\nAby ustawić nowe hasło, otwórz link (ważny przez godzinę):\n%s\n\nJeśli to nie Ty, zignoruj tę wiadomość.", link)
	if err := s.mailer.SendEmail(account.Email, "Zmiana hasła", body); err != nil {
		metrics.EmailsSent.WithLabelValues(metrics.Outcome(err)).Inc()
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	metrics.EmailsSent.WithLabelValues(metrics.Outcome(nil)).Inc()

	s.logger.Info("Password reset sent", zap.String("uid", account.UID))
	return nil
}

// ResetPassword completes a reset. Each token works once.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := checkPassword(newPassword); err != nil {
		return err
	}

	reset, err := s.store.ConsumePasswordReset(ctx, hashResetToken(token))
	if errors.Is(err, db.ErrNotFound) {
		return ErrResetExpired
	}
	if err != nil {
		return fmt.Errorf("failed to load password reset: %w", err)
	}
	if !s.now().Before(reset.ExpiresAt) {
		return ErrResetExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.store.UpdateAccountPassword(ctx, reset.UID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("Password reset completed", zap.String("uid", reset.UID))
	return nil
}

// StateChanges streams sign-in state notifications until cancel is called.
// Without a bus there is nothing to report and the channel is closed at once.
func (s *Service) StateChanges() (<-chan StateChange, func()) {
	if s.bus == nil {
		out := make(chan StateChange)
		close(out)
		return out, func() {}
	}

	changes, unsubscribe := s.bus.Subscribe(StateTopic)
	out := make(chan StateChange, 16)
	done := make(chan struct{})

	go func() {
		defer close(out)
		for c := range changes {
			select {
			case out <- StateChange{UID: c.ID, SignedIn: c.Kind != live.KindRemoved}:
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return out, func() {
		once.Do(func() {
			close(done)
			unsubscribe()
		})
	}
}
