package session

import (
	"context"
	"sync"
)

// Store is the single source of truth for identity state in the running
// client process. It is passive: it mutates only through its actions and
// notifies an observer (the Synchronizer) after every token or user change.
//
// A failing action never clobbers existing valid session state. The shared
// loading flag is last-settled-wins across overlapping actions; callers use
// it only as a coarse busy indicator.
type Store struct {
	mu     sync.Mutex
	client AuthClient
	logger Logger

	token   string
	user    *User
	profile *UserProfile
	lastErr string
	loading bool

	onChange func()
}

// NewStore returns a Store bound to the given backend client.
func NewStore(client AuthClient) *Store {
	return &Store{
		client: client,
		logger: defLogger{},
	}
}

func (s *Store) WithLogger(logger Logger) *Store {
	s.logger = logger
	return s
}

// OnChange registers the observer invoked after every token or user change.
// Only one observer is supported; the synchronizer owns this slot.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Login authenticates with the backend. On success it replaces token and
// user and clears the error state.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.begin()

	creds, err := s.client.Login(ctx, email, password)
	if err != nil {
		s.logger.Error("login failed", "error", err)
		s.settleFailure(err)
		return err
	}

	s.settleCredentials(creds)
	return nil
}

// Register creates a new account. The returned identity carries the guest
// role until it is activated.
func (s *Store) Register(ctx context.Context, name, email, password string) error {
	s.begin()

	creds, err := s.client.Register(ctx, name, email, password)
	if err != nil {
		s.logger.Error("register failed", "error", err)
		s.settleFailure(err)
		return err
	}

	s.settleCredentials(creds)
	return nil
}

// ActivateAccount transitions a guest account to the user role. Calling it
// on an already activated account is a no-op; the store leaves the decision
// to block activation UI to its consumers.
func (s *Store) ActivateAccount(ctx context.Context, key string) error {
	s.mu.Lock()
	token := s.token
	if s.user != nil && s.user.Role != RoleGuest {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if token == "" {
		return ErrNoSessionToken
	}

	s.begin()

	user, err := s.client.ActivateAccount(ctx, token, key)
	if err != nil {
		s.logger.Error("activate account failed", "error", err)
		s.settleFailure(err)
		return err
	}

	s.mu.Lock()
	s.user = user
	s.lastErr = ""
	s.loading = false
	s.mu.Unlock()

	s.notify()
	return nil
}

// FetchProfile populates user and profile from the backend using the
// current token. On failure the store only records the error; clearing a
// session with a rejected token is the synchronizer's responsibility.
func (s *Store) FetchProfile(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		return ErrNoSessionToken
	}

	s.begin()

	account, err := s.client.FetchProfile(ctx, token)
	if err != nil {
		s.logger.Error("fetch profile failed", "error", err)
		s.settleFailure(err)
		return err
	}

	s.mu.Lock()
	s.user = account.User
	s.profile = account.Profile
	s.lastErr = ""
	s.loading = false
	s.mu.Unlock()

	s.notify()
	return nil
}

// Logout clears token, user, profile and error unconditionally. It never
// fails and performs no remote call.
func (s *Store) Logout() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.profile = nil
	s.lastErr = ""
	s.mu.Unlock()

	s.notify()
}

// ClearError clears only the error field.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}

// SeedToken sets the token without touching user or profile. The
// synchronizer uses it to adopt a token found in the cookie before
// rehydrating. It is a no-op when the store already holds a token.
func (s *Store) SeedToken(token string) {
	s.mu.Lock()
	if s.token != "" || token == "" {
		s.mu.Unlock()
		return
	}
	s.token = token
	s.mu.Unlock()

	s.notify()
}

// Token returns the current bearer token, empty when unauthenticated.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// CurrentUser returns the current identity, nil when unauthenticated.
func (s *Store) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Profile returns the fetched profile, nil until FetchProfile succeeds.
func (s *Store) Profile() *UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// LastError returns the human readable message of the last failed action.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// IsLoading reports whether an action is pending. With overlapping actions
// the last one to settle determines the value.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// clearSession drops token, user and profile while keeping the recorded
// error. Used by the synchronizer's teardown so the failure stays visible.
func (s *Store) clearSession() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.profile = nil
	s.mu.Unlock()

	s.notify()
}

func (s *Store) begin() {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
}

func (s *Store) settleFailure(err error) {
	s.mu.Lock()
	s.lastErr = errorMessage(err)
	s.loading = false
	s.mu.Unlock()
}

func (s *Store) settleCredentials(creds *Credentials) {
	s.mu.Lock()
	s.token = creds.Token
	s.user = creds.User
	s.lastErr = ""
	s.loading = false
	s.mu.Unlock()

	s.notify()
}

func (s *Store) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}
