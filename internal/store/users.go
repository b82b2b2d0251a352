//go:generate go run go.uber.org/mock/mockgen -source=users.go -destination=../mocks/mock_user_repository.go -package=mocks

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Tyrowin/oxidechat/internal/domain"
	"github.com/dgraph-io/badger/v4"
)

type UserRepository interface {
	CreateUser(ctx context.Context, username, passwordHash string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
}

// User is an account as persisted in badger.
type User struct {
	ID           domain.UserID `json:"id"`
	Username     string        `json:"username"`
	PasswordHash string        `json:"password_hash"`
	CreatedAt    time.Time     `json:"created_at"`
}

type BadgerUserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

func userKey(username string) []byte {
	return []byte("user:" + username)
}

// CreateUser persists a new user under a fresh id. It fails with
// ErrUserExists when username is already registered.
func (r *BadgerUserRepository) CreateUser(_ context.Context, username, passwordHash string) (User, error) {
	user := User{
		ID:           domain.NewUserID(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(user)
	if err != nil {
		return User{}, fmt.Errorf("marshal user: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		key := userKey(username)
		if _, err := txn.Get(key); err == nil {
			return ErrUserExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (r *BadgerUserRepository) GetUserByUsername(_ context.Context, username string) (User, error) {
	var user User
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(username))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}
