package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

var (
	ErrInvalidSessionToken = errors.New("session token is invalid")
	ErrExpiredSessionToken = errors.New("session token is expired")
)

const (
	defaultSessionTokenDuration = 5 * time.Minute
	sessionTokenBytes           = 32
)

type SessionManagerInterface interface {
	GenerateSessionToken(userID string, duration time.Duration) (string, error)
	VerifySessionToken(sessionToken string) (string, error)
	DeleteSessionToken(sessionToken string)
	PurgeExpired() int
}

// pendingLogin is a login that passed the password check and waits for the
// second factor.
type pendingLogin struct {
	userID    string
	expiresAt time.Time
}

func (p pendingLogin) expired(now time.Time) bool {
	return now.After(p.expiresAt)
}

// SessionManager keeps pending logins in memory, keyed by an opaque token.
// Expired entries stay until PurgeExpired runs.
type SessionManager struct {
	mu      sync.RWMutex
	pending map[string]pendingLogin
	now     func() time.Time
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		pending: make(map[string]pendingLogin),
		now:     time.Now,
	}
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (sm *SessionManager) GenerateSessionToken(userID string, duration time.Duration) (string, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", ErrInternalError
	}

	sm.mu.Lock()
	sm.pending[token] = pendingLogin{userID: userID, expiresAt: sm.now().Add(duration)}
	sm.mu.Unlock()
	return token, nil
}

func (sm *SessionManager) VerifySessionToken(sessionToken string) (string, error) {
	sm.mu.RLock()
	login, ok := sm.pending[sessionToken]
	sm.mu.RUnlock()

	switch {
	case !ok:
		return "", ErrInvalidSessionToken
	case login.expired(sm.now()):
		return "", ErrExpiredSessionToken
	}
	return login.userID, nil
}

func (sm *SessionManager) DeleteSessionToken(sessionToken string) {
	sm.mu.Lock()
	delete(sm.pending, sessionToken)
	sm.mu.Unlock()
}

// PurgeExpired drops expired pending logins and returns how many went.
func (sm *SessionManager) PurgeExpired() int {
	now := sm.now()

	sm.mu.Lock()
	defer sm.mu.Unlock()
	removed := 0
	for token, login := range sm.pending {
		if login.expired(now) {
			delete(sm.pending, token)
			removed++
		}
	}
	return removed
}
