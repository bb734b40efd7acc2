package domain

import (
	"context"
	"time"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Authenticate(ctx context.Context, rawToken string) (*User, error)
	// EnsureUser creates the account when the login is free and returns the stored user.
	EnsureUser(ctx context.Context, req RegisterRequest) (*User, error)
}

type RegisterRequest struct {
	Name     string         `json:"name"`
	Login    string         `json:"login"`
	Password string         `json:"password"`
	Role     string         `json:"role"`
	Metadata map[string]any `json:"metadata"`
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserView  `json:"user"`
}
