// Package routeguard is a stateless edge interceptor: it allows or
// redirects requests based solely on the presence of the auth cookie. It
// never decodes the token and never checks roles; it proves "a token
// exists", not "the token is valid". Role authorization is re-checked by
// the destination once the session store is hydrated.
package routeguard

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-router"
)

// Default path sets. Matching is literal prefix matching, so
// /dashboard/settings falls under /dashboard.
var (
	DefaultProtectedPrefixes = []string{"/profile", "/admin", "/dashboard"}
	DefaultAuthOnlyPrefixes  = []string{"/login", "/register"}
	// DefaultExcludedPrefixes are never evaluated: API routes, framework
	// internals, static assets.
	DefaultExcludedPrefixes = []string{"/api", "/_", "/static", "/assets", "/favicon.ico"}
)

type Config struct {
	// Filter defines a function to skip the middleware when it returns true
	Filter func(router.Context) bool

	// CookieName is the cookie inspected for token presence
	CookieName string

	// ProtectedPrefixes require a cookie; without one the request is
	// redirected to LoginPath with the original path in ReturnToParam
	ProtectedPrefixes []string

	// AuthOnlyPrefixes are for unauthenticated visitors only; with a cookie
	// present the request is redirected to ProfilePath
	AuthOnlyPrefixes []string

	// ExcludedPrefixes are passed through before any rule is evaluated
	ExcludedPrefixes []string

	LoginPath     string
	ProfilePath   string
	ReturnToParam string
}

// ConfigDefault holds the platform defaults.
var ConfigDefault = Config{
	CookieName:        "auth-token",
	ProtectedPrefixes: DefaultProtectedPrefixes,
	AuthOnlyPrefixes:  DefaultAuthOnlyPrefixes,
	ExcludedPrefixes:  DefaultExcludedPrefixes,
	LoginPath:         "/login",
	ProfilePath:       "/profile",
	ReturnToParam:     "from",
}

func configDefault(config ...Config) Config {
	if len(config) == 0 {
		return ConfigDefault
	}

	cfg := config[0]

	if cfg.CookieName == "" {
		cfg.CookieName = ConfigDefault.CookieName
	}
	if cfg.ProtectedPrefixes == nil {
		cfg.ProtectedPrefixes = ConfigDefault.ProtectedPrefixes
	}
	if cfg.AuthOnlyPrefixes == nil {
		cfg.AuthOnlyPrefixes = ConfigDefault.AuthOnlyPrefixes
	}
	if cfg.ExcludedPrefixes == nil {
		cfg.ExcludedPrefixes = ConfigDefault.ExcludedPrefixes
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = ConfigDefault.LoginPath
	}
	if cfg.ProfilePath == "" {
		cfg.ProfilePath = ConfigDefault.ProfilePath
	}
	if cfg.ReturnToParam == "" {
		cfg.ReturnToParam = ConfigDefault.ReturnToParam
	}

	return cfg
}

// New returns the guard middleware. The decision is a pure function of the
// request path and cookie presence.
func New(config ...Config) router.MiddlewareFunc {
	cfg := configDefault(config...)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			path := ctx.Path()
			if hasAnyPrefix(path, cfg.ExcludedPrefixes) {
				return ctx.Next()
			}

			hasToken := ctx.Cookies(cfg.CookieName) != ""

			if hasToken && hasAnyPrefix(path, cfg.AuthOnlyPrefixes) {
				return ctx.Redirect(cfg.ProfilePath, http.StatusFound)
			}

			if !hasToken && hasAnyPrefix(path, cfg.ProtectedPrefixes) {
				return ctx.Redirect(loginRedirect(cfg, path), http.StatusFound)
			}

			return ctx.Next()
		}
	}
}

// loginRedirect builds the login URL carrying the original path so the
// destination can send the visitor back after authentication.
func loginRedirect(cfg Config, path string) string {
	return cfg.LoginPath + "?" + cfg.ReturnToParam + "=" + url.QueryEscape(path)
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
