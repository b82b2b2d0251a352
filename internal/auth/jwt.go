package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Tyrowin/oxidechat/internal/domain"
	"github.com/Tyrowin/oxidechat/internal/store"
	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer = "oxidechat"

	kindAccess  = "access"
	kindRefresh = "refresh"
)

// Claims is the payload of every token issued by JWTService. Kind separates
// access tokens from refresh tokens; the subject is the user id.
type Claims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// JWTService authenticates against a user repository and issues HS256 signed
// tokens.
type JWTService struct {
	users      store.UserRepository
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        *slog.Logger
}

func NewJWTService(users store.UserRepository, secret string, accessTTL, refreshTTL time.Duration, log *slog.Logger) *JWTService {
	return &JWTService{
		users:      users,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		log:        log,
	}
}

func (s *JWTService) Signup(ctx context.Context, input SignupInput) (domain.UserID, error) {
	if err := ValidateCredentials(input.Username, input.Password); err != nil {
		return domain.UserID{}, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return domain.UserID{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, input.Username, hash)
	if errors.Is(err, store.ErrUserExists) {
		return domain.UserID{}, ErrUsernameTaken
	}
	if err != nil {
		return domain.UserID{}, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("User signed up", "user_id", user.ID.String(), "username", user.Username)
	return user.ID, nil
}

func (s *JWTService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	user, err := s.users.GetUserByUsername(ctx, input.Username)
	if errors.Is(err, store.ErrNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("get user: %w", err)
	}

	ok, err := ComparePassword(input.Password, user.PasswordHash)
	if err != nil {
		return LoginResult{}, fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return LoginResult{}, ErrInvalidCredentials
	}

	tokens, err := s.issue(user.ID)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{UserID: user.ID, Tokens: tokens}, nil
}

func (s *JWTService) VerifyToken(_ context.Context, token string) (domain.UserID, error) {
	id, err := s.parse(token, kindAccess)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.UserID{}, ErrTokenExpired
	case err != nil:
		s.log.Debug("Rejected access token", "error", err)
		return domain.UserID{}, ErrInvalidToken
	}
	return id, nil
}

func (s *JWTService) RefreshToken(_ context.Context, refreshToken string) (Tokens, error) {
	id, err := s.parse(refreshToken, kindRefresh)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Tokens{}, ErrRefreshTokenExpired
	case err != nil:
		s.log.Debug("Rejected refresh token", "error", err)
		return Tokens{}, ErrInvalidRefreshToken
	}
	return s.issue(id)
}

func (s *JWTService) issue(id domain.UserID) (Tokens, error) {
	access, err := s.sign(id, kindAccess, s.accessTTL)
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := s.sign(id, kindRefresh, s.refreshTTL)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{
		AccessToken:      access,
		AccessExpiresIn:  uint64(s.accessTTL.Seconds()),
		RefreshToken:     refresh,
		RefreshExpiresIn: uint64(s.refreshTTL.Seconds()),
	}, nil
}

func (s *JWTService) sign(id domain.UserID, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

func (s *JWTService) parse(token, kind string) (domain.UserID, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.UserID{}, err
	}
	if claims.Kind != kind {
		return domain.UserID{}, fmt.Errorf("expected %s token, got %q", kind, claims.Kind)
	}
	return domain.ParseUserID(claims.Subject)
}
