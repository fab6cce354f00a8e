// Package session holds the HemoCore bearer token for the console.
//
// The Holder keeps the token in memory and mirrors it to a Store so that
// the CLI stays logged in between invocations. HTTP handlers that act on
// behalf of a caller put that caller's token on the request context with
// WithToken instead of touching the shared Holder.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hemocore/console/logging"
)

// TokenKey is the storage key the token is persisted under
const TokenKey = "hemocore_token"

// ErrNotAuthenticated is returned when an operation needs a token and none is held
var ErrNotAuthenticated = errors.New("not authenticated")

// Store persists the token between runs
type Store interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Holder is the explicit token lifecycle: Init, Set, Clear
type Holder struct {
	store Store
	now   func() time.Time

	mu    sync.RWMutex
	token string
}

// NewHolder returns an empty holder backed by store; a nil store keeps the
// token in memory only.
func NewHolder(store Store) *Holder {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Holder{store: store, now: time.Now}
}

// Init loads a previously saved token. An expired JWT is discarded.
func (h *Holder) Init() error {
	token, err := h.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	h.mu.Lock()
	h.token = token
	h.mu.Unlock()

	if token != "" && h.expired(token) {
		logging.Info("Stored session token has expired, clearing it")
		return h.Clear()
	}
	return nil
}

// Token returns the current token, or "" when unauthenticated or expired
func (h *Holder) Token() string {
	h.mu.RLock()
	token := h.token
	h.mu.RUnlock()

	if token == "" || h.expired(token) {
		return ""
	}
	return token
}

// Set stores a new token in memory and in the backing store
func (h *Holder) Set(token string) error {
	h.mu.Lock()
	h.token = token
	h.mu.Unlock()

	if err := h.store.Save(token); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear forgets the token. The in-memory token is cleared even when the
// store fails.
func (h *Holder) Clear() error {
	h.mu.Lock()
	h.token = ""
	h.mu.Unlock()

	if err := h.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether a usable token is held
func (h *Holder) IsAuthenticated() bool {
	return h.Token() != ""
}

// ExpiresAt returns the exp claim of the held token when it is a JWT
func (h *Holder) ExpiresAt() (time.Time, bool) {
	h.mu.RLock()
	token := h.token
	h.mu.RUnlock()
	return TokenExpiry(token)
}

func (h *Holder) expired(token string) bool {
	exp, ok := TokenExpiry(token)
	return ok && !h.now().Before(exp)
}

// TokenExpiry reads the exp claim without verifying the signature. The
// console never trusts claims, it only uses exp to avoid sending a token
// the backend will reject anyway. Opaque tokens report ok=false.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

type tokenCtxKey struct{}

// WithToken returns a context carrying a per-request bearer token
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenCtxKey{}, token)
}

// TokenFrom returns the token carried by ctx, if any
func TokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenCtxKey{}).(string)
	return token, ok && token != ""
}
