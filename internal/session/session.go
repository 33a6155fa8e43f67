// Package session owns the process-wide answer to "who is signed in".
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/taqnia-dev/adminctl/internal/api"
	"github.com/taqnia-dev/adminctl/internal/httpclient"
	"github.com/taqnia-dev/adminctl/internal/tokenstore"
)

// State is the lifecycle stage of the session.
type State int

const (
	// Unknown means the persisted token has not been checked yet.
	Unknown State = iota
	Anonymous
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Authenticator is the subset of the backend the session needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
	Me(ctx context.Context) (*api.User, error)
	Logout(ctx context.Context) error
}

// Navigator sends the user back to the sign-in entry point.
type Navigator interface {
	RedirectToLogin(ctx context.Context, reason error)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, reason error)

// RedirectToLogin calls f.
func (f NavigatorFunc) RedirectToLogin(ctx context.Context, reason error) {
	f(ctx, reason)
}

// Snapshot is a consistent read of the session.
type Snapshot struct {
	State   State
	User    *api.User
	Loading bool
}

// Option configures a Store.
type Option func(*Store)

// WithNavigator sets where HandleUnauthorized redirects.
func WithNavigator(n Navigator) Option {
	return func(s *Store) {
		s.nav = n
	}
}

// WithLogger sets the logger used for swallowed failures.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithClock overrides the time source used to spot expired tokens.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store holds the current user. It is only changed through Init, SignIn,
// SignOut and HandleUnauthorized.
type Store struct {
	auth   Authenticator
	tokens tokenstore.Store
	nav    Navigator
	logger zerolog.Logger
	now    func() time.Time

	// tokenMu pairs every token write with its state change. It is taken
	// before mu and held across token store I/O; mu never is.
	tokenMu sync.Mutex

	mu    sync.RWMutex
	state State
	user  *api.User
	// epoch increments on every transition so a slow Init cannot overwrite
	// a sign-in or sign-out that finished first.
	epoch uint64

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// New returns a store in the Unknown state.
func New(auth Authenticator, tokens tokenstore.Store, opts ...Option) *Store {
	s := &Store{
		auth:   auth,
		tokens: tokens,
		logger: log.Logger,
		now:    time.Now,
		subs:   make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init resolves the Unknown state from the persisted token.
func (s *Store) Init(ctx context.Context) error {
	s.mu.RLock()
	epoch := s.epoch
	s.mu.RUnlock()

	token, err := s.tokens.Load()
	if errors.Is(err, tokenstore.ErrNotFound) {
		s.settle(epoch, Anonymous, nil, false)
		return nil
	}
	if err != nil {
		s.settle(epoch, Anonymous, nil, false)
		return fmt.Errorf("failed to read stored token: %w", err)
	}

	if s.expired(token) {
		s.logger.Debug().Msg("Stored token has expired, discarding it")
		s.settle(epoch, Anonymous, nil, true)
		return nil
	}

	user, err := s.auth.Me(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Stored token was rejected, discarding it")
		s.settle(epoch, Anonymous, nil, true)
		return nil
	}

	s.settle(epoch, Authenticated, user, false)
	return nil
}

// expired reports whether token is a JWT whose exp is in the past. Opaque
// tokens are left for the backend to judge.
func (s *Store) expired(token string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.After(s.now())
}

// SignIn exchanges credentials for a session. On failure nothing changes.
func (s *Store) SignIn(ctx context.Context, email, password string) (*api.User, error) {
	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.tokenMu.Lock()
	if err := s.tokens.Save(resp.Token); err != nil {
		s.tokenMu.Unlock()
		return nil, fmt.Errorf("failed to store token: %w", err)
	}
	user := resp.User
	snap := s.transition(Authenticated, &user)
	s.tokenMu.Unlock()

	s.publish(snap)
	return copyUser(&user), nil
}

// SignOut tells the backend to drop the token, then clears local state
// whether or not the backend answered.
func (s *Store) SignOut(ctx context.Context) error {
	if err := s.auth.Logout(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Server logout failed, clearing local session anyway")
	}

	s.tokenMu.Lock()
	err := s.tokens.Delete()
	snap := s.transition(Anonymous, nil)
	s.tokenMu.Unlock()

	s.publish(snap)
	if err != nil {
		return fmt.Errorf("failed to remove stored token: %w", err)
	}
	return nil
}

// HandleUnauthorized is called for every 401 except a rejected sign-in. It
// removes the token, ends an authenticated session and redirects to login.
func (s *Store) HandleUnauthorized(ctx context.Context, reqErr *httpclient.RequestError) {
	s.tokenMu.Lock()
	s.discardToken()
	var snap *Snapshot
	if s.State() == Authenticated {
		ended := s.transition(Anonymous, nil)
		snap = &ended
	}
	s.tokenMu.Unlock()

	if snap != nil {
		s.publish(*snap)
	}
	if s.nav != nil {
		s.nav.RedirectToLogin(ctx, reqErr)
	}
}

func (s *Store) discardToken() {
	if err := s.tokens.Delete(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to remove stored token")
	}
}

// State returns the current lifecycle stage.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns a copy of the signed-in user, or nil.
func (s *Store) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.user)
}

// Loading reports whether Init has not finished yet.
func (s *Store) Loading() bool {
	return s.State() == Unknown
}

// Snapshot returns state, user and loading flag read together.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		State:   s.state,
		User:    copyUser(s.user),
		Loading: s.state == Unknown,
	}
}

// Subscribe calls fn with a snapshot after every transition. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// transition applies a new state and returns the snapshot to publish once
// the caller has released tokenMu.
func (s *Store) transition(state State, user *api.User) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.user = copyUser(user)
	s.epoch++
	return s.snapshotLocked()
}

// settle applies the outcome of Init unless another transition happened
// while it was talking to the backend. The token is only discarded when the
// outcome is applied, so a token saved by a concurrent SignIn survives.
func (s *Store) settle(epoch uint64, state State, user *api.User, discard bool) {
	s.tokenMu.Lock()
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.tokenMu.Unlock()
		return
	}
	s.state = state
	s.user = copyUser(user)
	s.epoch++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if discard {
		s.discardToken()
	}
	s.tokenMu.Unlock()

	s.publish(snap)
}

func (s *Store) publish(snap Snapshot) {
	s.subMu.Lock()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func copyUser(u *api.User) *api.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
