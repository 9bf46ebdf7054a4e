package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password too weak")
	ErrEmailInUse         = errors.New("email already in use")
	ErrTooManyAttempts    = errors.New("too many failed sign-in attempts")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrResetExpired       = errors.New("password reset expired or unknown")
	ErrMailerUnavailable  = errors.New("email relay not configured")
)

const fallbackMessage = "Wystąpił nieoczekiwany błąd. Spróbuj ponownie."

var messages = []struct {
	err error
	msg string
}{
	{ErrInvalidCredentials, "Nieprawidłowy e-mail lub hasło."},
	{ErrInvalidEmail, "Nieprawidłowy adres e-mail."},
	{ErrWeakPassword, "Hasło musi mieć co najmniej 6 znaków."},
	{ErrEmailInUse, "Ten adres e-mail jest już zarejestrowany."},
	{ErrTooManyAttempts, "Zbyt wiele nieudanych prób logowania. Spróbuj ponownie później."},
	{ErrInvalidToken, "Sesja wygasła. Zaloguj się ponownie."},
	{ErrTokenRevoked, "Sesja wygasła. Zaloguj się ponownie."},
	{ErrResetExpired, "Link do zmiany hasła wygasł lub jest nieprawidłowy."},
	{ErrMailerUnavailable, "Wysyłka wiadomości e-mail jest niedostępna."},
}

// Message returns the user-facing Polish text for an authentication error
func Message(err error) string {
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return fallbackMessage
}

// IsAuthError reports whether err is one of the sentinels above
func IsAuthError(err error) bool {
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return true
		}
	}
	return false
}
