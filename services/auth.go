package services

import (
	"context"
	"fmt"

	"github.com/hemocore/console/apiclient"
	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/logging"
	"github.com/hemocore/console/session"
)

// AuthService talks to /auth and keeps the session holder in step
type AuthService struct {
	api    API
	holder *session.Holder
}

// Login authenticates without a bearer token and stores the issued token
func (s *AuthService) Login(ctx context.Context, req entities.LoginRequest) (entities.AuthResponse, error) {
	var resp entities.AuthResponse
	if err := s.api.Post(ctx, "/auth/login", req, &resp, apiclient.WithoutAuth()); err != nil {
		return resp, fmt.Errorf("login failed: %w", err)
	}
	if err := s.remember(resp.Token); err != nil {
		return resp, err
	}
	return resp, nil
}

func (s *AuthService) Register(ctx context.Context, req entities.RegisterRequest) (entities.AuthResponse, error) {
	var resp entities.AuthResponse
	if err := s.api.Post(ctx, "/auth/register", req, &resp, apiclient.WithoutAuth()); err != nil {
		return resp, fmt.Errorf("registration failed: %w", err)
	}
	if err := s.remember(resp.Token); err != nil {
		return resp, err
	}
	return resp, nil
}

func (s *AuthService) remember(token string) error {
	if token == "" || s.holder == nil {
		return nil
	}
	if err := s.holder.Set(token); err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}
	return nil
}

// Logout notifies the API and always clears the local token. A failed
// notification is logged, not returned.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.api.Post(ctx, "/auth/logout", struct{}{}, nil); err != nil {
		logging.Warn("Logout request failed", "error", err)
	}
	if s.holder == nil {
		return nil
	}
	return s.holder.Clear()
}

// CurrentUser returns the operator behind the active token. Without a
// token it returns session.ErrNotAuthenticated; when the check fails the
// stored token is cleared.
func (s *AuthService) CurrentUser(ctx context.Context) (entities.User, error) {
	_, fromContext := session.TokenFrom(ctx)
	if !fromContext && !s.IsAuthenticated() {
		return entities.User{}, session.ErrNotAuthenticated
	}

	var user entities.User
	if err := s.api.Get(ctx, "/auth/me", &user); err != nil {
		if !fromContext && s.holder != nil {
			if clearErr := s.holder.Clear(); clearErr != nil {
				logging.Warn("Failed to clear session after failed check", "error", clearErr)
			}
		}
		return entities.User{}, fmt.Errorf("session check failed: %w", err)
	}
	return user, nil
}

// IsAuthenticated reports whether the holder carries a live token
func (s *AuthService) IsAuthenticated() bool {
	return s.holder != nil && s.holder.IsAuthenticated()
}
