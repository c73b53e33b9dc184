// Package session holds the authenticated identity of the planner client.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tartampluch/go-wedding/internal/api"
	"github.com/tartampluch/go-wedding/internal/config"
	"github.com/tartampluch/go-wedding/internal/model"
	"github.com/tartampluch/go-wedding/internal/observe"
)

// State is the position of the store in its sign-in state machine.
type State int

const (
	StateSignedOut State = iota
	StateAuthenticating
	StateSignedIn
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateSignedIn:
		return "signed_in"
	}
	return "signed_out"
}

var (
	// ErrNotSignedIn is returned by RefreshSession when there is no token to refresh.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrMissingCredentials is returned when email or password is empty.
	ErrMissingCredentials = errors.New("email and password are required")
)

// Authenticator is the part of the backend the session needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (api.AuthResponse, error)
	Register(ctx context.Context, email, password, name string) (api.AuthResponse, error)
	Refresh(ctx context.Context) (api.AuthResponse, error)
}

// Status is the read-only view handed to listeners.
type Status struct {
	State State
	User  model.UserProfile
	Error string
}

// Store owns the current session. Callers must not run Login, Register and
// RefreshSession concurrently on the same Store; the last one to finish wins.
type Store struct {
	// FormatError turns failures into the message kept in ErrorMessage.
	// Set it before the first operation.
	FormatError func(error) string

	auth  Authenticator
	creds CredentialStore

	mu      sync.RWMutex
	state   State
	token   string
	user    model.UserProfile
	expires time.Time
	errMsg  string

	changes observe.Hub[Status]
}

// NewStore restores any persisted token. When one exists the store starts in
// StateAuthenticating and Resume must be called to validate it.
func NewStore(auth Authenticator, creds CredentialStore) *Store {
	s := &Store{
		FormatError: api.Describe,
		auth:        auth,
		creds:       creds,
		state:       StateSignedOut,
	}

	token, err := creds.Get(config.CredKeyToken)
	switch {
	case err == nil && token != "":
		s.state = StateAuthenticating
		s.token = token
		s.expires = tokenExpiry(token)
		if raw, err := creds.Get(config.CredKeyUser); err == nil {
			if err := json.Unmarshal([]byte(raw), &s.user); err != nil {
				slog.Warn(config.MsgProfileCorrupt,
					config.LogKeyComponent, config.CompSession,
					config.LogKeyError, err)
			}
		}
	case err != nil && !errors.Is(err, ErrNoCredential):
		slog.Warn(config.ErrKeyringRead,
			config.LogKeyComponent, config.CompSession,
			config.LogKeyError, err)
	}
	return s
}

// Resume validates a restored token. It is a no-op unless the store is
// waiting in StateAuthenticating after NewStore.
func (s *Store) Resume(ctx context.Context) error {
	if s.State() != StateAuthenticating {
		return nil
	}
	return s.RefreshSession(ctx)
}

// Login signs in with an existing account.
func (s *Store) Login(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		s.recordError(ErrMissingCredentials)
		return ErrMissingCredentials
	}
	s.begin()
	resp, err := s.auth.Login(ctx, strings.TrimSpace(email), password)
	return s.finish(config.OpLogin, resp, err)
}

// Register creates an account and signs it in.
func (s *Store) Register(ctx context.Context, email, password, name string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		s.recordError(ErrMissingCredentials)
		return ErrMissingCredentials
	}
	s.begin()
	resp, err := s.auth.Register(ctx, strings.TrimSpace(email), password, strings.TrimSpace(name))
	return s.finish(config.OpRegister, resp, err)
}

// RefreshSession re-validates the token with the server. Any failure signs
// the user out and wipes stored credentials.
func (s *Store) RefreshSession(ctx context.Context) error {
	s.mu.RLock()
	token, user := s.token, s.user
	s.mu.RUnlock()

	if token == "" {
		s.forceSignOut(ErrNotSignedIn)
		return ErrNotSignedIn
	}

	resp, err := s.auth.Refresh(ctx)
	if err == nil && !resp.Success {
		err = rejection(config.OpRefresh, resp.Message)
	}
	if err != nil {
		s.forceSignOut(err)
		return fmt.Errorf("%s: %w", config.ErrRefreshFailed, err)
	}

	if resp.Token != "" {
		token = resp.Token
	}
	if resp.User != nil {
		user = *resp.User
	}
	s.install(config.OpRefresh, token, user)
	return nil
}

// Logout clears the session and stored credentials unconditionally.
func (s *Store) Logout() {
	s.clearCredentials()

	s.mu.Lock()
	s.state = StateSignedOut
	s.token = ""
	s.user = model.UserProfile{}
	s.expires = time.Time{}
	s.errMsg = ""
	st := s.statusLocked()
	s.mu.Unlock()

	slog.Info(config.MsgSignedOut, config.LogKeyComponent, config.CompSession)
	s.changes.Publish(st)
}

// Token implements api.TokenSource.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsAuthenticated reports whether a validated session is active.
func (s *Store) IsAuthenticated() bool {
	return s.State() == StateSignedIn
}

// Session returns the active session, if any.
func (s *Store) Session() (model.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateSignedIn {
		return model.Session{}, false
	}
	return model.Session{Token: s.token, User: s.user, ExpiresAt: s.expires}, true
}

// ErrorMessage returns the last recorded failure, or "".
func (s *Store) ErrorMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Status returns a snapshot of the store.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusLocked()
}

// NeedsRefresh reports whether a signed-in token expires within the refresh
// window. Tokens without a readable expiry never need it.
func (s *Store) NeedsRefresh(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateSignedIn || s.expires.IsZero() {
		return false
	}
	return !now.Add(config.TokenRefreshWindow).Before(s.expires)
}

// OnChange registers fn to be called after every state change.
func (s *Store) OnChange(fn func(Status)) (cancel func()) {
	return s.changes.Subscribe(fn)
}

func (s *Store) begin() {
	s.mu.Lock()
	s.state = StateAuthenticating
	s.errMsg = ""
	st := s.statusLocked()
	s.mu.Unlock()
	s.changes.Publish(st)
}

// finish installs a login or register outcome. A response without a user
// profile still signs in, with an empty profile. A failure ends any previous
// session, including what was persisted for it.
func (s *Store) finish(op string, resp api.AuthResponse, err error) error {
	if err == nil && (!resp.Success || resp.Token == "") {
		err = rejection(op, resp.Message)
	}
	if err != nil {
		s.clearCredentials()

		s.mu.Lock()
		s.state = StateSignedOut
		s.token = ""
		s.user = model.UserProfile{}
		s.expires = time.Time{}
		s.errMsg = s.describe(err)
		st := s.statusLocked()
		s.mu.Unlock()

		slog.Warn(config.MsgAuthFailed,
			config.LogKeyComponent, config.CompSession,
			config.LogKeyOperation, op,
			config.LogKeyError, err)
		s.changes.Publish(st)
		return err
	}

	var user model.UserProfile
	if resp.User != nil {
		user = *resp.User
	}
	s.install(op, resp.Token, user)
	return nil
}

// install persists and activates a validated session.
func (s *Store) install(op, token string, user model.UserProfile) {
	if err := s.creds.Set(config.CredKeyToken, token); err != nil {
		slog.Error(config.ErrKeyringWrite,
			config.LogKeyComponent, config.CompSession,
			config.LogKeyError, err)
	}
	if raw, err := json.Marshal(user); err == nil {
		if err := s.creds.Set(config.CredKeyUser, string(raw)); err != nil {
			slog.Error(config.ErrKeyringWrite,
				config.LogKeyComponent, config.CompSession,
				config.LogKeyError, err)
		}
	}

	s.mu.Lock()
	s.state = StateSignedIn
	s.token = token
	s.user = user
	s.expires = tokenExpiry(token)
	s.errMsg = ""
	st := s.statusLocked()
	s.mu.Unlock()

	slog.Info(config.MsgSignedIn,
		config.LogKeyComponent, config.CompSession,
		config.LogKeyOperation, op,
		config.LogKeyUserID, user.ID.String())
	s.changes.Publish(st)
}

// forceSignOut is the only path where an error changes state: it ends the
// session and wipes what was persisted.
func (s *Store) forceSignOut(cause error) {
	s.clearCredentials()

	s.mu.Lock()
	s.state = StateSignedOut
	s.token = ""
	s.user = model.UserProfile{}
	s.expires = time.Time{}
	s.errMsg = s.describe(cause)
	st := s.statusLocked()
	s.mu.Unlock()

	slog.Warn(config.MsgForcedSignOut,
		config.LogKeyComponent, config.CompSession,
		config.LogKeyError, cause)
	s.changes.Publish(st)
}

func (s *Store) recordError(err error) {
	s.mu.Lock()
	s.errMsg = s.describe(err)
	st := s.statusLocked()
	s.mu.Unlock()
	s.changes.Publish(st)
}

func (s *Store) clearCredentials() {
	for _, key := range []string{config.CredKeyToken, config.CredKeyUser} {
		if err := s.creds.Delete(key); err != nil {
			slog.Error(config.ErrKeyringDelete,
				config.LogKeyComponent, config.CompSession,
				config.LogKeyKey, key,
				config.LogKeyError, err)
		}
	}
}

func (s *Store) describe(err error) string {
	if s.FormatError != nil {
		return s.FormatError(err)
	}
	return err.Error()
}

func (s *Store) statusLocked() Status {
	return Status{State: s.state, User: s.user, Error: s.errMsg}
}

func rejection(op, message string) error {
	if message == "" {
		message = config.MsgAuthRejected
	}
	return &api.RejectedError{Endpoint: op, Message: message}
}
