// Package auth holds the signed-in identity of this storefront process.
//
// A Session is the only owner of the bearer token. It is hydrated once from
// a TokenStore at startup, replaced on login or register, and cleared on
// logout. It satisfies api.TokenSource.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/threadswap/storefront/internal/utils"
)

// User is the signed-in account.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Credentials is what a TokenStore persists.
type Credentials struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ErrNoSession is returned by a TokenStore holding nothing.
var ErrNoSession = errors.New("no stored session")

// TokenStore persists the credentials between runs.
type TokenStore interface {
	Load(ctx context.Context) (Credentials, error)
	Save(ctx context.Context, c Credentials) error
	Clear(ctx context.Context) error
}

type Session struct {
	store TokenStore
	now   func() time.Time

	mu       sync.RWMutex
	creds    *Credentials
	onLogout []func()
}

func NewSession(store TokenStore) *Session {
	return &Session{store: store, now: time.Now}
}

// Init hydrates the session from the store. A stored token that is
// malformed or already expired is discarded.
func (s *Session) Init(ctx context.Context) error {
	c, err := s.store.Load(ctx)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	claims, err := utils.ParseTokenClaims(c.Token)
	if err != nil || claims.Expired(s.now()) {
		slog.Info("discarding stored session", "user_id", c.User.ID, "reason", reason(err))
		return s.store.Clear(ctx)
	}

	s.mu.Lock()
	s.creds = &c
	s.mu.Unlock()
	slog.Info("session restored", "user_id", c.User.ID)
	return nil
}

func reason(err error) string {
	if err != nil {
		return err.Error()
	}
	return "token expired"
}

// SignIn persists and adopts new credentials.
func (s *Session) SignIn(ctx context.Context, token string, user User) error {
	c := Credentials{Token: token, User: user}
	if err := s.store.Save(ctx, c); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.mu.Lock()
	switched := s.creds != nil && s.creds.User.ID != user.ID
	s.creds = &c
	hooks := append([]func(){}, s.onLogout...)
	s.mu.Unlock()

	if switched {
		slog.Info("session switched user", "user_id", user.ID)
		for _, fn := range hooks {
			fn()
		}
	}
	return nil
}

// OnLogout registers fn to run after every logout and whenever a different
// user signs in over the current one. The query cache uses it so a new
// identity never reads data fetched for the previous one.
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	s.onLogout = append(s.onLogout, fn)
	s.mu.Unlock()
}

// Logout forgets the credentials in memory and in the store.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.creds = nil
	hooks := append([]func(){}, s.onLogout...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Token returns the bearer token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil {
		return ""
	}
	return s.creds.Token
}

func (s *Session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil {
		return User{}, false
	}
	return s.creds.User, true
}

// UserID returns the signed-in user's id, or "".
func (s *Session) UserID() string {
	u, _ := s.User()
	return u.ID
}

func (s *Session) IsAuthenticated() bool {
	_, ok := s.User()
	return ok
}
