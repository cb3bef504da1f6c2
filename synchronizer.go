package session

import (
	"context"
	"strings"
	"sync"
)

// Synchronizer keeps the store token and the cookie mirror convergent. It
// is the only writer of the auth cookie: the route guard reads it, the
// store never touches it.
//
// Three reaction rules run whenever their inputs change:
//  1. a non-empty store token is propagated to the cookie
//  2. cookie and store are reconciled when they disagree
//  3. a surviving cookie token rehydrates an empty store on load
//
// Every rule is idempotent, so a pass may run any number of times without
// further observable effect.
type Synchronizer struct {
	store   *Store
	cookies CookieJar
	cfg     Config
	nav     Navigator
	logger  Logger
	baseCtx context.Context

	mu        sync.Mutex
	syncing   bool
	dirty     bool
	prevToken string
	// token whose rehydration already failed; guards against a retry loop
	// when the failure is transient and leaves the cookie in place
	failedToken string
}

// NewSynchronizer wires a synchronizer to the store and the cookie jar and
// registers itself as the store's change observer.
func NewSynchronizer(store *Store, cookies CookieJar, cfg Config) *Synchronizer {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Synchronizer{
		store:   store,
		cookies: cookies,
		cfg:     cfg,
		logger:  defLogger{},
		baseCtx: context.Background(),
	}

	store.OnChange(s.onTokenChanged)

	return s
}

func (s *Synchronizer) WithLogger(logger Logger) *Synchronizer {
	s.logger = logger
	return s
}

// WithNavigator enables the silent redirect of the token-invalid recovery
// path. Without one the synchronizer still tears the session down but
// leaves navigation to the caller.
func (s *Synchronizer) WithNavigator(nav Navigator) *Synchronizer {
	s.nav = nav
	return s
}

// WithContext sets the context used for remote calls triggered by change
// notifications, which carry no context of their own.
func (s *Synchronizer) WithContext(ctx context.Context) *Synchronizer {
	if ctx != nil {
		s.baseCtx = ctx
	}
	return s
}

// OnStartup runs the initial reconciliation pass. Call it once after
// wiring, before the first navigation: a surviving cookie token rehydrates
// the store here.
func (s *Synchronizer) OnStartup(ctx context.Context) {
	s.sync(ctx)
}

// CurrentUser returns the identity held by the store, nil when anonymous.
func (s *Synchronizer) CurrentUser() *User {
	return s.store.CurrentUser()
}

// IsAuthenticated reports whether the store holds an identity.
func (s *Synchronizer) IsAuthenticated() bool {
	return s.store.CurrentUser() != nil
}

// IsAdmin reports whether the current identity holds the admin role.
func (s *Synchronizer) IsAdmin() bool {
	return s.store.CurrentUser().IsAdmin()
}

// IsGuest reports whether the current identity is pending activation.
func (s *Synchronizer) IsGuest() bool {
	return s.store.CurrentUser().IsGuest()
}

// IsActivated reports whether the current identity went through activation.
func (s *Synchronizer) IsActivated() bool {
	return s.store.CurrentUser().IsActivated()
}

// Logout ends the session and drops the cookie mirror with it. Marking the
// cookie token as this session's previous token first means the reconcile
// pass sees an in-process logout and removes the cookie, instead of
// treating it as a fresh load and rehydrating the session being ended.
func (s *Synchronizer) Logout() {
	if tok, present := s.cookies.Get(s.cfg.GetCookieName()); present && tok != "" {
		s.mu.Lock()
		s.prevToken = tok
		s.mu.Unlock()
	}

	s.store.Logout()
}

// onTokenChanged is the store's change observer.
func (s *Synchronizer) onTokenChanged() {
	s.sync(s.baseCtx)
}

// sync runs reconciliation passes until the state stops moving. Reentrant
// invocations (a pass mutating the store re-triggers the observer) coalesce
// into one trailing pass instead of recursing.
func (s *Synchronizer) sync(ctx context.Context) {
	s.mu.Lock()
	if s.syncing {
		s.dirty = true
		s.mu.Unlock()
		return
	}
	s.syncing = true
	s.mu.Unlock()

	for {
		s.pass(ctx)

		s.mu.Lock()
		if !s.dirty {
			s.syncing = false
			s.mu.Unlock()
			return
		}
		s.dirty = false
		s.mu.Unlock()
	}
}

// pass evaluates the reaction rules once. Propagation runs before
// reconciliation, so a freshly set token is mirrored before divergence is
// evaluated and the pass converges instead of oscillating.
func (s *Synchronizer) pass(ctx context.Context) {
	name := s.cfg.GetCookieName()
	token := s.store.Token()
	user := s.store.CurrentUser()
	cookieToken, present := s.cookies.Get(name)

	defer func() {
		s.mu.Lock()
		s.prevToken = s.store.Token()
		s.mu.Unlock()
	}()

	if token != "" {
		if !present || cookieToken != token {
			s.cookies.Set(name, token, s.cfg.GetCookieDuration())
		}
		if user == nil {
			// token seeded without an identity, hydrate it
			s.rehydrate(ctx, token)
		}
		return
	}

	if !present || cookieToken == "" {
		// both absent, converged
		return
	}

	s.mu.Lock()
	hadToken := s.prevToken != ""
	alreadyFailed := s.failedToken == cookieToken
	s.mu.Unlock()

	if hadToken {
		// the process dropped this session (logout, teardown); the stale
		// mirror follows rather than resurrecting it
		s.cookies.Remove(name)
		return
	}

	if alreadyFailed {
		return
	}

	// fresh process with a surviving cookie: adopt the token and rebuild
	// user and profile from the backend
	s.store.SeedToken(cookieToken)
	s.rehydrate(ctx, cookieToken)
}

// rehydrate fetches user and profile for a token the store adopted from the
// cookie. A rejected token tears the whole session down; any other failure
// is surfaced on the store and never retried here.
func (s *Synchronizer) rehydrate(ctx context.Context, token string) {
	s.mu.Lock()
	if s.failedToken == token {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	err := s.store.FetchProfile(ctx)
	if err == nil {
		s.mu.Lock()
		s.failedToken = ""
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.failedToken = token
	s.mu.Unlock()

	if IsTokenInvalidError(err) {
		s.logger.Info("session token rejected, tearing down", "error", err)
		s.teardown()
		return
	}

	s.logger.Warn("rehydration failed, keeping cookie", "error", err)
}

// teardown is the recovery path for a token the backend no longer honors:
// remove the cookie, clear the store, and redirect to login when the
// current path requires an authenticated session.
func (s *Synchronizer) teardown() {
	s.cookies.Remove(s.cfg.GetCookieName())
	s.store.clearSession()

	if s.nav == nil {
		return
	}

	if pathHasAnyPrefix(s.nav.Path(), s.cfg.GetProtectedPrefixes()) {
		s.nav.Redirect(s.cfg.GetLoginPath())
	}
}

func pathHasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
