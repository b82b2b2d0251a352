package store

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// CaptchaRepository keeps captcha answers until they expire or are taken.
type CaptchaRepository struct {
	db *badger.DB
}

func NewCaptchaRepository(db *badger.DB) *CaptchaRepository {
	return &CaptchaRepository{db: db}
}

func captchaKey(id string) []byte {
	return []byte("captcha:" + id)
}

// Put stores answer under id for ttl.
func (r *CaptchaRepository) Put(_ context.Context, id, answer string, ttl time.Duration) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(captchaKey(id), []byte(answer)).WithTTL(ttl))
	})
}

// Take returns the answer stored under id and deletes it, so that every
// captcha is answered at most once. Expired or unknown ids yield ErrNotFound.
func (r *CaptchaRepository) Take(_ context.Context, id string) (string, error) {
	var answer string
	err := r.db.Update(func(txn *badger.Txn) error {
		key := captchaKey(id)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		answer = string(val)
		return txn.Delete(key)
	})
	return answer, err
}
