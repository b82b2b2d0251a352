package captcha

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Tyrowin/oxidechat/internal/store"
	imagecaptcha "github.com/dchest/captcha"
	"github.com/google/uuid"
)

const digitCount = 6

// ImageService renders digit captchas as PNG images and keeps the answers in
// an AnswerStore.
type ImageService struct {
	answers AnswerStore
	ttl     time.Duration
	width   int
	height  int
	log     *slog.Logger
}

func NewImageService(answers AnswerStore, ttl time.Duration, log *slog.Logger) *ImageService {
	return &ImageService{
		answers: answers,
		ttl:     ttl,
		width:   imagecaptcha.StdWidth,
		height:  imagecaptcha.StdHeight,
		log:     log,
	}
}

func (s *ImageService) Generate(ctx context.Context) (Challenge, error) {
	id := uuid.New()
	digits := imagecaptcha.RandomDigits(digitCount)

	var buf bytes.Buffer
	if _, err := imagecaptcha.NewImage(id.String(), digits, s.width, s.height).WriteTo(&buf); err != nil {
		return Challenge{}, fmt.Errorf("render captcha: %w", err)
	}

	if err := s.answers.Put(ctx, id.String(), digitsToString(digits), s.ttl); err != nil {
		return Challenge{}, fmt.Errorf("store captcha answer: %w", err)
	}

	s.log.Debug("Captcha generated", "captcha_id", id.String())
	return Challenge{
		ID:          id,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		ExpireAt:    time.Now().Add(s.ttl).UTC(),
	}, nil
}

func (s *ImageService) Validate(ctx context.Context, id uuid.UUID, answer string) error {
	err := check(ctx, s.answers, id, answer)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// digitsToString turns the 0-9 values produced by RandomDigits into text.
func digitsToString(digits []byte) string {
	out := make([]byte, len(digits))
	for i, d := range digits {
		out[i] = '0' + d
	}
	return string(out)
}
