package captcha

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FakeAnswer solves every challenge issued by FakeService.
const FakeAnswer = "fake"

// FakeService issues image-less challenges, all answered by FakeAnswer.
type FakeService struct {
	answers *MemoryAnswerStore
	ttl     time.Duration
}

func NewFakeService(ttl time.Duration) *FakeService {
	return &FakeService{answers: NewMemoryAnswerStore(), ttl: ttl}
}

func (s *FakeService) Generate(ctx context.Context) (Challenge, error) {
	id := uuid.New()
	if err := s.answers.Put(ctx, id.String(), FakeAnswer, s.ttl); err != nil {
		return Challenge{}, err
	}
	return Challenge{
		ID:          id,
		ImageBase64: base64.StdEncoding.EncodeToString([]byte(FakeAnswer)),
		ExpireAt:    time.Now().Add(s.ttl).UTC(),
	}, nil
}

func (s *FakeService) Validate(ctx context.Context, id uuid.UUID, answer string) error {
	return check(ctx, s.answers, id, answer)
}

type memoryAnswer struct {
	answer   string
	expireAt time.Time
}

// MemoryAnswerStore is an AnswerStore held in process memory. Expired answers
// are dropped lazily when they are taken or when new ones are put.
type MemoryAnswerStore struct {
	mu      sync.Mutex
	answers map[string]memoryAnswer
}

func NewMemoryAnswerStore() *MemoryAnswerStore {
	return &MemoryAnswerStore{answers: make(map[string]memoryAnswer)}
}

func (m *MemoryAnswerStore) Put(_ context.Context, id, answer string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for key, a := range m.answers {
		if !now.Before(a.expireAt) {
			delete(m.answers, key)
		}
	}
	m.answers[id] = memoryAnswer{answer: answer, expireAt: now.Add(ttl)}
	return nil
}

func (m *MemoryAnswerStore) Take(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.answers[id]
	if !ok {
		return "", ErrNotFound
	}
	delete(m.answers, id)
	if !time.Now().Before(a.expireAt) {
		return "", ErrNotFound
	}
	return a.answer, nil
}
