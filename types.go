package session

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Logger is the minimal logging surface; args are alternating key/value
// pairs, slog style.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// AuthClient is the opaque channel to the backend. The session layer never
// looks inside the transport; it only consumes typed results or typed errors.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (*Credentials, error)
	Register(ctx context.Context, name, email, password string) (*Credentials, error)
	ActivateAccount(ctx context.Context, token, key string) (*User, error)
	FetchProfile(ctx context.Context, token string) (*Account, error)
}

// CookieJar is the narrow capability over the key/value store shared with
// the edge routing layer. Exactly one component, the Synchronizer, may call
// Set and Remove; the route guard only reads.
type CookieJar interface {
	Get(name string) (string, bool)
	Set(name, value string, maxAge time.Duration)
	Remove(name string)
}

// Navigator abstracts the client's ability to change location. The
// synchronizer uses it for the single silent redirect of the token-invalid
// recovery path.
type Navigator interface {
	Path() string
	Redirect(path string)
}

// Config holds session options
type Config interface {
	GetCookieName() string
	GetCookieDuration() time.Duration
	GetProtectedPrefixes() []string
	GetAuthOnlyPrefixes() []string
	GetLoginPath() string
	GetProfilePath() string
	GetReturnToParam() string
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Println(formatLogLine("[ERR]", msg, args))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Println(formatLogLine("[WRN]", msg, args))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Println(formatLogLine("[INF]", msg, args))
}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Println(formatLogLine("[DBG]", msg, args))
}

// formatLogLine renders the message with its key/value pairs appended as
// key=value; a trailing unpaired arg is appended as-is.
func formatLogLine(level, msg string, args []any) string {
	var b strings.Builder
	b.WriteString(level)
	b.WriteString(" SESSION ")
	b.WriteString(msg)

	i := 0
	for ; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	if i < len(args) {
		fmt.Fprintf(&b, " %v", args[i])
	}

	return b.String()
}
