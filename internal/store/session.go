package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/safar/pizza-storefront/internal/api"
	"github.com/safar/pizza-storefront/internal/models"
)

// AuthClient is the slice of the backend client the session needs.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (api.Token, error)
	Register(ctx context.Context, email, password string) error
	Me(ctx context.Context) (*models.User, error)
}

type SessionState int

const (
	StateBootstrapping SessionState = iota
	StateAnonymous
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateBootstrapping:
		return "bootstrapping"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Session holds the authenticated identity derived from the persisted
// bearer token. A non-nil user always means the token was accepted by the
// backend at last check; clearing the token always accompanies the user
// going away.
type Session struct {
	mu     sync.Mutex
	auth   AuthClient
	tokens TokenStore

	user    *models.User
	loading bool
	busy    bool
}

// NewSession starts in Bootstrapping when a persisted token exists,
// Anonymous otherwise. Call Bootstrap to resolve the token into a user.
func NewSession(auth AuthClient, tokens TokenStore) *Session {
	return &Session{
		auth:    auth,
		tokens:  tokens,
		loading: tokens.Token() != "",
	}
}

// Bootstrap resolves a persisted token into the current user. With no
// token it returns immediately without touching the network. Any rejection
// (expired token, network failure) clears the token and lands the session
// in Anonymous. The loading flag clears exactly once on every path.
func (s *Session) Bootstrap(ctx context.Context) error {
	if s.tokens.Token() == "" {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		return nil
	}

	user, err := s.auth.Me(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		if clearErr := s.tokens.Clear(); clearErr != nil {
			return fmt.Errorf("clear rejected token: %w", clearErr)
		}
		return fmt.Errorf("bootstrap session: %w", err)
	}

	s.user = user
	return nil
}

// Login exchanges credentials for a token, persists it, then fetches the
// profile. The token is persisted only after the exchange succeeds; if the
// profile fetch then fails, the token is rolled back so the session never
// rests in "token persisted, no profile". Concurrent calls fail with
// ErrBusy.
func (s *Session) Login(ctx context.Context, email, password string) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	return s.login(ctx, email, password)
}

// Register creates an account and logs in with the same credentials. A
// login failure after a successful registration does not undo the created
// account.
func (s *Session) Register(ctx context.Context, email, password string) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	if err := s.auth.Register(ctx, email, password); err != nil {
		return err
	}
	return s.login(ctx, email, password)
}

func (s *Session) login(ctx context.Context, email, password string) error {
	token, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}

	if err := s.tokens.Save(token.AccessToken); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}

	user, err := s.auth.Me(ctx)
	if err != nil {
		// Rolling back the token must also drop any previously
		// authenticated user: no token, no user.
		s.mu.Lock()
		s.user = nil
		s.mu.Unlock()

		if clearErr := s.tokens.Clear(); clearErr != nil {
			return fmt.Errorf("roll back token: %v (original error: %w)", clearErr, err)
		}
		return err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return nil
}

// Logout clears the token and the user unconditionally. Purely local; the
// backend is never contacted.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err := s.tokens.Clear(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *Session) User() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.loading:
		return StateBootstrapping
	case s.user != nil:
		return StateAuthenticated
	}
	return StateAnonymous
}

func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return ErrBusy
	}
	s.busy = true
	return nil
}

func (s *Session) end() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}
