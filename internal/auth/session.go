// Package auth issues bearer session tokens and authenticates requests.
//
// Tokens are random; the store keeps only their HMAC-SHA256 digest, so a
// leaked process dump does not hand out usable sessions, and the keyed
// digest makes lookup timing useless to an attacker who lacks the pepper.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/go-faster/errors"
)

// ErrInvalidToken is returned when a token is unknown or has been revoked.
var ErrInvalidToken = errors.New("invalid or expired token")

// SessionManager maps bearer tokens to user ids.
type SessionManager struct {
	pepper []byte

	mu       sync.RWMutex
	sessions map[string]string // hex HMAC of token -> user id
}

// NewSessionManager creates a session manager keyed with the given HMAC
// pepper.
func NewSessionManager(pepper []byte) *SessionManager {
	return &SessionManager{
		pepper:   pepper,
		sessions: make(map[string]string),
	}
}

// Create opens a session for the user and returns the opaque bearer token.
func (m *SessionManager) Create(userID string) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "generate token")
	}
	token := hex.EncodeToString(raw)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[m.digest(token)] = userID
	return token, nil
}

// Resolve returns the user id owning the token.
func (m *SessionManager) Resolve(token string) (string, error) {
	digest := m.digest(token)

	m.mu.RLock()
	defer m.mu.RUnlock()

	userID, ok := m.sessions[digest]
	if !ok {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// Destroy revokes the token. Revoking an unknown token is a no-op.
func (m *SessionManager) Destroy(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, m.digest(token))
}

func (m *SessionManager) digest(token string) string {
	mac := hmac.New(sha256.New, m.pepper)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
