package session

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidCredentials = "INVALID_CREDENTIALS"
	textCodeTokenInvalid       = "SESSION_TOKEN_INVALID"
	textCodeNoSessionToken     = "NO_SESSION_TOKEN"
	textCodeNotActivatable     = "ACCOUNT_NOT_ACTIVATABLE"
	textCodeTransport          = "UPSTREAM_UNAVAILABLE"
)

// ErrInvalidCredentials is returned when the backend rejects a login or
// registration attempt.
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode(textCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenInvalid is returned when the backend rejects the session token
// itself. This is the only failure that triggers automatic session teardown.
var ErrTokenInvalid = goerrors.New("session token is invalid or expired", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenInvalid).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoSessionToken is returned when an operation requires a token and the
// store holds none.
var ErrNoSessionToken = goerrors.New("no session token", goerrors.CategoryAuth).
	WithTextCode(textCodeNoSessionToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrNotActivatable is returned when activation is requested for an account
// that is not in the guest role.
var ErrNotActivatable = goerrors.New("account is not pending activation", goerrors.CategoryConflict).
	WithTextCode(textCodeNotActivatable).
	WithCode(goerrors.CodeConflict)

// ErrUpstreamUnavailable wraps transport failures talking to the backend.
// These are surfaced as state but never recovered from automatically.
var ErrUpstreamUnavailable = goerrors.New("authentication backend unavailable", goerrors.CategoryInternal).
	WithTextCode(textCodeTransport).
	WithCode(goerrors.CodeInternal)

// IsTokenInvalidError will check if an error invalidates the token itself,
// which is the trigger for the synchronizer's recovery path.
func IsTokenInvalidError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == textCodeTokenInvalid
	}

	return strings.Contains(err.Error(), "token is invalid") ||
		strings.Contains(err.Error(), "token is expired")
}

// IsInvalidCredentialsError will check for rejected credentials
func IsInvalidCredentialsError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == textCodeInvalidCredentials
	}

	return strings.Contains(err.Error(), "invalid credentials")
}

// errorMessage extracts a human readable message to surface on the store.
func errorMessage(err error) string {
	if err == nil {
		return ""
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}

	return err.Error()
}
