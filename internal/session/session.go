// Package session tracks the signed-in user. The session is persisted as a
// signed JWT on disk so the CLI keeps its sign-in across invocations, and
// exposed both as a point read (Current) and a reactive stream (Watch) for
// the gates and the syncer.
package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/errs"
)

// Session describes the signed-in user as seen by gates and the syncer.
type Session struct {
	UserID   string
	Username string
	Premium  bool
}

type claims struct {
	Username string `json:"username"`
	Premium  bool   `json:"premium"`
	jwt.RegisteredClaims
}

// Manager owns the current session. Constructed once in main and injected;
// safe for concurrent use.
type Manager struct {
	path    string
	signKey []byte

	mu   sync.Mutex
	cur  *Session
	subs map[chan Session]struct{}
}

// NewManager loads any persisted session from path. An expired or malformed
// token file is treated as signed out, not as an error.
func NewManager(path string, signKey []byte) *Manager {
	m := &Manager{path: path, signKey: signKey, subs: make(map[chan Session]struct{})}
	if s, err := m.load(); err == nil {
		m.cur = s
	}
	return m
}

// Current returns the signed-in session or errs.ErrNotSignedIn.
func (m *Manager) Current(_ context.Context) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == nil {
		return Session{}, errs.ErrNotSignedIn
	}
	return *m.cur, nil
}

// Watch emits the current session immediately (zero value when signed out)
// and again on every sign-in/sign-out until ctx is done.
func (m *Manager) Watch(ctx context.Context) <-chan Session {
	out := make(chan Session, 1)

	m.mu.Lock()
	var cur Session
	if m.cur != nil {
		cur = *m.cur
	}
	sub := make(chan Session, 1)
	m.subs[sub] = struct{}{}
	m.mu.Unlock()

	out <- cur
	go func() {
		defer close(out)
		defer func() {
			m.mu.Lock()
			delete(m.subs, sub)
			m.mu.Unlock()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case s := <-sub:
				select {
				case out <- s:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// SignIn persists the session as a signed token valid for ttl and notifies
// watchers.
func (m *Manager) SignIn(s Session, ttl time.Duration) error {
	now := time.Now()
	c := claims{
		Username: s.Username,
		Premium:  s.Premium,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.signKey)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(m.path, []byte(signed), 0o600); err != nil {
		return err
	}

	m.mu.Lock()
	m.cur = &s
	m.broadcastLocked(s)
	m.mu.Unlock()
	return nil
}

// SignOut clears the session and removes the persisted token.
func (m *Manager) SignOut() error {
	err := os.Remove(m.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	m.mu.Lock()
	m.cur = nil
	m.broadcastLocked(Session{})
	m.mu.Unlock()
	return nil
}

func (m *Manager) broadcastLocked(s Session) {
	for sub := range m.subs {
		select {
		case sub <- s:
		default:
			// Drop the stale value so the latest one wins.
			select {
			case <-sub:
			default:
			}
			sub <- s
		}
	}
}

func (m *Manager) load() (*Session, error) {
	raw, err := os.ReadFile(m.path)
	if err != nil {
		return nil, err
	}
	var c claims
	tok, err := jwt.ParseWithClaims(string(raw), &c, func(*jwt.Token) (any, error) {
		return m.signKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return nil, errs.ErrNotSignedIn
	}
	return &Session{UserID: c.Subject, Username: c.Username, Premium: c.Premium}, nil
}
