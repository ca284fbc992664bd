package client

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/stockkeeper/internal/live"
)

// CurrentUser is the signed-in identity, as far as the client knows.
type CurrentUser struct {
	UserID string
	Email  string
}

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/stockkeeper, falling back to
// ~/.config/stockkeeper.
func DefaultConfigDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "stockkeeper")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "stockkeeper")
}

// Session persists the access token between runs and fans auth state out
// to observers.
type Session struct {
	dir string
	now func() time.Time

	mu        sync.Mutex
	observers map[*live.Latest[*CurrentUser]]struct{}
}

// NewSession keeps its token in dir. An empty dir means DefaultConfigDir().
func NewSession(dir string) *Session {
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Session{
		dir:       dir,
		now:       time.Now,
		observers: make(map[*live.Latest[*CurrentUser]]struct{}),
	}
}

// TokenPath is the file holding the token.
func (s *Session) TokenPath() string { return filepath.Join(s.dir, "token.json") }

func (s *Session) load() (tokenFile, bool) {
	b, err := os.ReadFile(s.TokenPath())
	if err != nil {
		return tokenFile{}, false
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return tokenFile{}, false
	}
	if tf.AccessToken == "" || s.now().After(tf.ExpiresAt) {
		return tokenFile{}, false
	}
	return tf, true
}

// Token returns the stored access token if it has not expired.
func (s *Session) Token() (string, bool) {
	tf, ok := s.load()
	return tf.AccessToken, ok
}

// CurrentUser returns the signed-in user or nil.
func (s *Session) CurrentUser() *CurrentUser {
	tf, ok := s.load()
	if !ok {
		return nil
	}
	return &CurrentUser{UserID: tf.UserID, Email: tf.Email}
}

// Save stores a freshly issued token. A zero expiry is read from the
// token's exp claim.
func (s *Session) Save(token string, exp time.Time, userID, email string) error {
	if exp.IsZero() {
		exp = expiryOf(token, s.now())
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(tokenFile{AccessToken: token, ExpiresAt: exp, UserID: userID, Email: email}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.TokenPath(), b, 0o600); err != nil {
		return err
	}
	s.broadcast()
	return nil
}

// Clear removes the stored token. Clearing an absent token is not an error.
func (s *Session) Clear() error {
	if err := os.Remove(s.TokenPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	s.broadcast()
	return nil
}

// Observe emits the current user immediately and again after every
// Save/Clear. Slow readers only see the latest state.
func (s *Session) Observe(ctx context.Context) <-chan *CurrentUser {
	l := live.NewLatest[*CurrentUser]()
	s.mu.Lock()
	s.observers[l] = struct{}{}
	s.mu.Unlock()
	l.Offer(s.CurrentUser())

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.observers, l)
		s.mu.Unlock()
		l.Close()
	}()
	return l.C()
}

func (s *Session) broadcast() {
	u := s.CurrentUser()
	s.mu.Lock()
	defer s.mu.Unlock()
	for l := range s.observers {
		l.Offer(u)
	}
}

func expiryOf(token string, now time.Time) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return now.Add(15 * time.Minute)
}
