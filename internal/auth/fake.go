package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Tyrowin/oxidechat/internal/domain"
	"github.com/google/uuid"
)

const (
	fakeAccessPrefix  = "fake-access-token:"
	fakeRefreshPrefix = "fake-refresh-token:"

	fakeAccessTTL  = time.Hour
	fakeRefreshTTL = 7 * 24 * time.Hour
)

// FakeService accepts any login and derives a stable id from the username.
// Its tokens are "fake-access-token:<username>" and
// "fake-refresh-token:<username>".
type FakeService struct{}

func NewFakeService() *FakeService {
	return &FakeService{}
}

func (*FakeService) Login(_ context.Context, input LoginInput) (LoginResult, error) {
	return LoginResult{
		UserID: FakeUserID(input.Username),
		Tokens: fakeTokens(input.Username),
	}, nil
}

func (*FakeService) Signup(_ context.Context, input SignupInput) (domain.UserID, error) {
	return FakeUserID(input.Username), nil
}

func (*FakeService) VerifyToken(_ context.Context, token string) (domain.UserID, error) {
	username, ok := strings.CutPrefix(token, fakeAccessPrefix)
	if !ok || username == "" {
		return domain.UserID{}, ErrInvalidToken
	}
	return FakeUserID(username), nil
}

func (*FakeService) RefreshToken(_ context.Context, refreshToken string) (Tokens, error) {
	username, ok := strings.CutPrefix(refreshToken, fakeRefreshPrefix)
	if !ok || username == "" {
		return Tokens{}, ErrInvalidRefreshToken
	}
	return fakeTokens(username), nil
}

// FakeUserID is the name-based uuid the fake backend assigns to username.
func FakeUserID(username string) domain.UserID {
	return domain.UserID{UUID: uuid.NewSHA1(uuid.NameSpaceOID, []byte(username))}
}

// FakeAccessToken returns the access token the fake backend accepts for
// username.
func FakeAccessToken(username string) string {
	return fakeAccessPrefix + username
}

func fakeTokens(username string) Tokens {
	return Tokens{
		AccessToken:      fmt.Sprintf("%s%s", fakeAccessPrefix, username),
		AccessExpiresIn:  uint64(fakeAccessTTL.Seconds()),
		RefreshToken:     fmt.Sprintf("%s%s", fakeRefreshPrefix, username),
		RefreshExpiresIn: uint64(fakeRefreshTTL.Seconds()),
	}
}
