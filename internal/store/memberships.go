package store

import (
	"context"
	"fmt"

	"github.com/Tyrowin/oxidechat/internal/domain"
	"github.com/dgraph-io/badger/v4"
)

// MembershipRepository records which users belong to which conversations.
// Each membership is a key "member:<conversation>:<user>" with no value.
type MembershipRepository struct {
	db *badger.DB
}

func NewMembershipRepository(db *badger.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func membersPrefix(conversation domain.ConversationID) []byte {
	return []byte("member:" + conversation.String() + ":")
}

func memberKey(conversation domain.ConversationID, user domain.UserID) []byte {
	return append(membersPrefix(conversation), user.String()...)
}

// Add makes user a member of conversation. Adding twice is harmless.
func (r *MembershipRepository) Add(_ context.Context, conversation domain.ConversationID, user domain.UserID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(memberKey(conversation, user), nil)
	})
}

// Remove drops user from conversation.
func (r *MembershipRepository) Remove(_ context.Context, conversation domain.ConversationID, user domain.UserID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(memberKey(conversation, user))
	})
}

// Members lists the members of conversation in key order.
func (r *MembershipRepository) Members(_ context.Context, conversation domain.ConversationID) ([]domain.UserID, error) {
	prefix := membersPrefix(conversation)
	var members []domain.UserID

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			id, err := domain.ParseUserID(string(key[len(prefix):]))
			if err != nil {
				return fmt.Errorf("corrupt membership key %q: %w", key, err)
			}
			members = append(members, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}
