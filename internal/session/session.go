// Package session persists the authenticated user's bearer token between
// runs. The token is read at request time, so signing in or out never
// requires rebuilding the HTTP client.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Store holds the current session token. The zero value is not usable; use
// NewStore or NewMemory. Token changes are announced to OnChange observers
// so per-user caches can be dropped when a different user signs in.
type Store struct {
	mu       sync.RWMutex
	path     string // empty for in-memory stores
	tok      string
	onChange []func()
}

type persisted struct {
	Token     string    `json:"token"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewStore opens a file-backed store at path, loading any persisted token.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		// A corrupt session file means signed out, not a fatal error.
		return s, nil
	}
	s.tok = p.Token
	return s, nil
}

// NewMemory returns a store that never touches disk. Tests and short-lived
// tools use it.
func NewMemory() *Store {
	return &Store{}
}

// Token returns the current bearer token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tok
}

// SetToken replaces the current token and persists it. Observers run when
// the token actually changed.
func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	changed := s.tok != token
	s.tok = token
	err := s.persist()
	fns := s.observers(changed)
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return err
}

// Clear signs out: the token is removed from memory and disk.
func (s *Store) Clear() error {
	s.mu.Lock()
	changed := s.tok != ""
	s.tok = ""
	var err error
	if s.path != "" {
		if rmErr := os.Remove(s.path); rmErr != nil && !os.IsNotExist(rmErr) {
			err = fmt.Errorf("remove session: %w", rmErr)
		}
	}
	fns := s.observers(changed)
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return err
}

// OnChange registers fn to run after every sign-in or sign-out. Callbacks
// run outside the store's lock, in registration order.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

// observers snapshots the callback list while the lock is held.
func (s *Store) observers(changed bool) []func() {
	if !changed || len(s.onChange) == 0 {
		return nil
	}
	fns := make([]func(), len(s.onChange))
	copy(fns, s.onChange)
	return fns
}

// Valid reports whether a token is present and, when it carries an exp
// claim, not yet expired. The signature is not verified here; authenticity
// is the server's concern.
func (s *Store) Valid() bool {
	s.mu.RLock()
	tok := s.tok
	s.mu.RUnlock()

	if tok == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		// Opaque tokens are accepted as-is.
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.After(time.Now())
}

func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.Marshal(persisted{Token: s.tok, UpdatedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
