//go:generate go run go.uber.org/mock/mockgen -source=captcha.go -destination=../mocks/mock_captcha.go -package=mocks -mock_names=Service=MockCaptchaService

// Package captcha issues human-verification challenges and checks their
// answers. Every answer can be checked once; checking consumes the challenge.
package captcha

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMismatch = errors.New("captcha mismatch")
	ErrNotFound = errors.New("captcha not found or expired")
)

// Challenge is what a client needs to render and answer a captcha.
type Challenge struct {
	ID          uuid.UUID `json:"id"`
	ImageBase64 string    `json:"image_base64"`
	ExpireAt    time.Time `json:"expire_at"`
}

type Service interface {
	Generate(ctx context.Context) (Challenge, error)
	Validate(ctx context.Context, id uuid.UUID, answer string) error
}

// AnswerStore keeps expected answers until they expire or are taken. Take
// must delete the answer and must report unknown or expired ids as ErrNotFound.
type AnswerStore interface {
	Put(ctx context.Context, id, answer string, ttl time.Duration) error
	Take(ctx context.Context, id string) (string, error)
}

func check(ctx context.Context, answers AnswerStore, id uuid.UUID, answer string) error {
	expected, err := answers.Take(ctx, id.String())
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(answer), expected) {
		return ErrMismatch
	}
	return nil
}
