package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/taqnia-dev/adminctl/internal/httpclient"
)

// Auth endpoints of the backend.
const (
	LoginPath  = "/api/login/"
	MePath     = "/api/me/"
	LogoutPath = "/api/logout"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// AuthService talks to the login, profile and logout endpoints.
type AuthService struct {
	client *httpclient.Client
}

// Login exchanges credentials for a token and the signed-in user.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	req := LoginRequest{Email: email, Password: password}
	if err := validateInput(req); err != nil {
		return nil, err
	}

	res, err := httpclient.Send[LoginResponse](ctx, s.client, httpclient.Request{
		Method:      http.MethodPost,
		Path:        LoginPath,
		Body:        req,
		Credentials: true,
	})
	if err != nil {
		return nil, err
	}
	if res.Value.Token == "" {
		return nil, fmt.Errorf("login response did not include a token")
	}
	return &res.Value, nil
}

// Me returns the user the current token belongs to.
func (s *AuthService) Me(ctx context.Context) (*User, error) {
	res, err := httpclient.Send[User](ctx, s.client, httpclient.Request{
		Method: http.MethodGet,
		Path:   MePath,
	})
	if err != nil {
		return nil, err
	}
	if res.NoContent || res.Value.ID == "" {
		return nil, fmt.Errorf("profile response did not include a user")
	}
	return &res.Value, nil
}

// Logout asks the backend to invalidate the current token.
func (s *AuthService) Logout(ctx context.Context) error {
	_, err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   LogoutPath,
	}, nil)
	return err
}
