//go:generate go run go.uber.org/mock/mockgen -source=auth.go -destination=../mocks/mock_auth.go -package=mocks -mock_names=Service=MockAuthService

// Package auth issues and verifies the credentials that admit a user to the
// chat. Two backends exist: a fake one for development and a JWT one backed by
// a user store.
package auth

import (
	"context"
	"errors"

	"github.com/Tyrowin/oxidechat/internal/domain"
)

var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrInvalidToken        = errors.New("token is not valid")
	ErrTokenExpired        = errors.New("token expired")
	ErrInvalidRefreshToken = errors.New("refresh token is not valid")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrInvalidInput        = errors.New("invalid input")
)

// Tokens is the pair handed to a client after login or refresh. Lifetimes
// are in seconds.
type Tokens struct {
	AccessToken      string `json:"access_token"`
	AccessExpiresIn  uint64 `json:"access_expires_in"`
	RefreshToken     string `json:"refresh_token"`
	RefreshExpiresIn uint64 `json:"refresh_expires_in"`
}

type LoginInput struct {
	Username string
	Password string
}

type LoginResult struct {
	UserID domain.UserID
	Tokens Tokens
}

type SignupInput struct {
	Username string
	Password string
}

// Service is the authentication capability consumed by the HTTP layer.
// VerifyToken is the gate every chat connection passes before admission.
type Service interface {
	Login(ctx context.Context, input LoginInput) (LoginResult, error)
	Signup(ctx context.Context, input SignupInput) (domain.UserID, error)
	VerifyToken(ctx context.Context, token string) (domain.UserID, error)
	RefreshToken(ctx context.Context, refreshToken string) (Tokens, error)
}
