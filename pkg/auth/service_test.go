package auth

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/db/memdb"
	"github.com/folkbase/folkbase/pkg/live"
)

type sentEmail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent []sentEmail
	err  error
}

func (f *fakeMailer) SendEmail(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{to, subject, body})
	return nil
}

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestService(t *testing.T) (*Service, *fakeMailer, *live.Bus) {
	t.Helper()
	bus := live.NewBus()
	mailer := &fakeMailer{}
	s := NewService(memdb.New(bus), bus, mailer, zap.NewNop(), Config{
		SessionSecret:     testSecret,
		CustomTokenSecret: []byte("custom-secret-custom-secret-0000"),
		SessionTTL:        time.Hour,
		ResetURL:          "https://zespol.example/reset",
	})
	return s, mailer, bus
}

func TestSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)

	session, err := s.SignUp(ctx, "ola@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.False(t, session.Anonymous)

	claims, err := s.Verify(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.UID, claims.UID)
	assert.Equal(t, "ola@example.com", claims.Email)

	again, err := s.SignIn(ctx, "OLA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, session.UID, again.UID)

	_, err = s.SignUp(ctx, "ola@example.com", "another1")
	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestSignUpValidation(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)

	_, err := s.SignUp(ctx, "not-an-email", "secret1")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = s.SignUp(ctx, "ola@example.com", "12345")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestSignInWrongPassword(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)

	_, err := s.SignUp(ctx, "ola@example.com", "secret1")
	require.NoError(t, err)

	_, err = s.SignIn(ctx, "ola@example.com", "wrong-one")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.SignIn(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignInThrottle(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)
	now := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_, err := s.SignUp(ctx, "ola@example.com", "secret1")
	require.NoError(t, err)

	for i := 0; i < maxFailedAttempts; i++ {
		_, err := s.SignIn(ctx, "ola@example.com", "wrong-one")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// Even the right password is refused while throttled
	_, err = s.SignIn(ctx, "ola@example.com", "secret1")
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	now = now.Add(throttleWindow + time.Second)
	_, err = s.SignIn(ctx, "ola@example.com", "secret1")
	assert.NoError(t, err)
}

func TestSignOutRevokesToken(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)

	session, err := s.SignUp(ctx, "ola@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, s.SignOut(ctx, session.Token))

	_, err = s.Verify(ctx, session.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	err = s.SignOut(ctx, session.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)

	session, err := s.SignInAnonymously(ctx)
	require.NoError(t, err)
	assert.True(t, session.Anonymous)

	_, err = s.Verify(ctx, session.Token+"x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = s.Verify(ctx, session.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignInWithCustomToken(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)

	token, err := MintCustomToken(s.cfg.CustomTokenSecret, "tool-uid", time.Minute)
	require.NoError(t, err)

	session, err := s.SignInWithCustomToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "tool-uid", session.UID)

	// Second use finds the existing account
	session, err = s.SignInWithCustomToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "tool-uid", session.UID)

	forged, err := MintCustomToken(testSecret, "tool-uid", time.Minute)
	require.NoError(t, err)
	_, err = s.SignInWithCustomToken(ctx, forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func resetTokenFrom(t *testing.T, body string) string {
	t.Helper()
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "https://") {
			u, err := url.Parse(line)
			require.NoError(t, err)
			return u.Query().Get("token")
		}
	}
	t.Fatal("no reset link in email body")
	return ""
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	s, mailer, _ := newTestService(t)

	_, err := s.SignUp(ctx, "ola@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, s.SendPasswordReset(ctx, "ola@example.com"))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ola@example.com", mailer.sent[0].to)

	token := resetTokenFrom(t, mailer.sent[0].body)
	require.NotEmpty(t, token)

	require.NoError(t, s.ResetPassword(ctx, token, "nowehaslo"))

	_, err = s.SignIn(ctx, "ola@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.SignIn(ctx, "ola@example.com", "nowehaslo")
	assert.NoError(t, err)

	// Tokens are single use
	err = s.ResetPassword(ctx, token, "innehaslo")
	assert.ErrorIs(t, err, ErrResetExpired)
}

func TestPasswordResetExpiry(t *testing.T) {
	ctx := context.Background()
	s, mailer, _ := newTestService(t)

	_, err := s.SignUp(ctx, "ola@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, s.SendPasswordReset(ctx, "ola@example.com"))
	token := resetTokenFrom(t, mailer.sent[0].body)

	s.now = func() time.Time { return time.Now().Add(resetTTL + time.Minute) }
	err = s.ResetPassword(ctx, token, "nowehaslo")
	assert.ErrorIs(t, err, ErrResetExpired)
}

func TestPasswordResetUnknownEmail(t *testing.T) {
	ctx := context.Background()
	s, mailer, _ := newTestService(t)

	assert.NoError(t, s.SendPasswordReset(ctx, "nobody@example.com"))
	assert.Empty(t, mailer.sent)

	assert.ErrorIs(t, s.SendPasswordReset(ctx, "nope"), ErrInvalidEmail)
}

func TestPasswordResetMailerFailure(t *testing.T) {
	ctx := context.Background()
	s, mailer, _ := newTestService(t)

	_, err := s.SignUp(ctx, "ola@example.com", "secret1")
	require.NoError(t, err)

	mailer.err = errors.New("smtp down")
	err = s.SendPasswordReset(ctx, "ola@example.com")
	assert.Error(t, err)
	assert.Equal(t, fallbackMessage, Message(err))
}

func TestStateChanges(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)

	changes, cancel := s.StateChanges()
	defer cancel()

	session, err := s.SignInAnonymously(ctx)
	require.NoError(t, err)
	require.NoError(t, s.SignOut(ctx, session.Token))

	select {
	case c := <-changes:
		assert.Equal(t, StateChange{UID: session.UID, SignedIn: true}, c)
	case <-time.After(time.Second):
		t.Fatal("no sign-in notification")
	}
	select {
	case c := <-changes:
		assert.Equal(t, StateChange{UID: session.UID, SignedIn: false}, c)
	case <-time.After(time.Second):
		t.Fatal("no sign-out notification")
	}

	cancel()
	cancel()
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Nieprawidłowy e-mail lub hasło.", Message(ErrInvalidCredentials))
	assert.Equal(t, "Sesja wygasła. Zaloguj się ponownie.", Message(errors.Join(ErrInvalidToken, errors.New("expired"))))
	assert.Equal(t, fallbackMessage, Message(errors.New("boom")))
	assert.True(t, IsAuthError(ErrWeakPassword))
	assert.False(t, IsAuthError(errors.New("boom")))
}

func TestStateChanges_WithoutBus(t *testing.T) {
	s := NewService(memdb.New(nil), nil, nil, zap.NewNop(), Config{SessionSecret: testSecret, SessionTTL: time.Hour})

	changes, cancel := s.StateChanges()
	defer cancel()

	_, err := s.SignInAnonymously(context.Background())
	require.NoError(t, err)

	_, open := <-changes
	assert.False(t, open)
}
