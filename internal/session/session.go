// Package session implements the signed cookie session used by the web
// UI for the login key, the CSRF token and flash messages. The cookie
// payload is JSON, base64url-encoded and HMAC-SHA256 signed; signing
// and token keys are derived from the master secret with HKDF so the
// two uses never share key material.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

const (
	// CookieName carries the serialized session.
	CookieName = "webui_session"

	keyAPIKey    = "api_key"
	keyCSRFToken = "csrf_token"
	keyFlashes   = "flashes"
)

// Flash is a one-shot message rendered on the next page view.
type Flash struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

// Manager signs, verifies and issues sessions.
type Manager struct {
	signKey  []byte
	tokenKey []byte
}

// NewManager derives the session keys from the master secret.
func NewManager(secret []byte) (*Manager, error) {
	signKey, err := deriveKey(secret, "webui-session-signing")
	if err != nil {
		return nil, err
	}
	tokenKey, err := deriveKey(secret, "webui-csrf-token")
	if err != nil {
		return nil, err
	}
	return &Manager{signKey: signKey, tokenKey: tokenKey}, nil
}

func deriveKey(secret []byte, info string) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", info, err)
	}
	return key, nil
}

// Session holds the per-browser values persisted in the signed cookie.
type Session struct {
	values map[string]string
}

// Get decodes the request's session cookie. A missing, malformed or
// badly signed cookie yields a fresh empty session rather than an error.
func (m *Manager) Get(c *gin.Context) *Session {
	s := &Session{values: map[string]string{}}
	raw, err := c.Cookie(CookieName)
	if err != nil || raw == "" {
		return s
	}
	payload, sig, found := strings.Cut(raw, ".")
	if !found {
		return s
	}
	data, errDecode := base64.RawURLEncoding.DecodeString(payload)
	if errDecode != nil {
		return s
	}
	wantSig, errSig := hex.DecodeString(sig)
	if errSig != nil {
		return s
	}
	mac := hmac.New(sha256.New, m.signKey)
	mac.Write(data)
	if !hmac.Equal(mac.Sum(nil), wantSig) {
		return s
	}
	values := map[string]string{}
	if errUnmarshal := json.Unmarshal(data, &values); errUnmarshal != nil {
		return s
	}
	s.values = values
	return s
}

// Save writes the session back as a signed cookie on the response.
func (m *Manager) Save(c *gin.Context, s *Session) {
	data, err := json.Marshal(s.values)
	if err != nil {
		return
	}
	mac := hmac.New(sha256.New, m.signKey)
	mac.Write(data)
	value := base64.RawURLEncoding.EncodeToString(data) + "." + hex.EncodeToString(mac.Sum(nil))
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// APIKey returns the key stored by a successful login, if any.
func (s *Session) APIKey() string { return s.values[keyAPIKey] }

// SetAPIKey stores a validated login key in the session.
func (s *Session) SetAPIKey(key string) { s.values[keyAPIKey] = key }

// CSRFToken returns the session's token, issuing one on first use.
func (m *Manager) CSRFToken(s *Session) string {
	if token := s.values[keyCSRFToken]; token != "" {
		return token
	}
	mac := hmac.New(sha256.New, m.tokenKey)
	mac.Write([]byte(uuid.NewString()))
	token := hex.EncodeToString(mac.Sum(nil))
	s.values[keyCSRFToken] = token
	return token
}

// CheckCSRF compares a submitted token against the session's token.
// Both must be present and equal.
func (s *Session) CheckCSRF(submitted string) bool {
	stored := s.values[keyCSRFToken]
	if stored == "" || submitted == "" {
		return false
	}
	return hmac.Equal([]byte(stored), []byte(submitted))
}

// AddFlash queues a one-shot message for the next page render.
func (s *Session) AddFlash(message, category string) {
	flashes := s.flashes()
	flashes = append(flashes, Flash{Message: message, Category: category})
	if data, err := json.Marshal(flashes); err == nil {
		s.values[keyFlashes] = string(data)
	}
}

// PopFlashes returns and clears the queued messages.
func (s *Session) PopFlashes() []Flash {
	flashes := s.flashes()
	delete(s.values, keyFlashes)
	return flashes
}

func (s *Session) flashes() []Flash {
	raw := s.values[keyFlashes]
	if raw == "" {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal([]byte(raw), &flashes); err != nil {
		return nil
	}
	return flashes
}
