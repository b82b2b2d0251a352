// Package user answers who should receive a message sent into a
// conversation.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Tyrowin/oxidechat/internal/domain"
	"github.com/samber/lo"
)

// ErrNotMember is returned when a sender writes to a conversation it has not
// joined.
var ErrNotMember = errors.New("sender is not a member of the conversation")

// FakeService knows no conversations, so every message has no receivers.
type FakeService struct{}

func NewFakeService() FakeService {
	return FakeService{}
}

func (FakeService) Receivers(context.Context, domain.UserID, domain.ConversationID) ([]domain.UserID, error) {
	return nil, nil
}

// Memberships is the persistence MembershipService relies on.
type Memberships interface {
	Add(ctx context.Context, conversation domain.ConversationID, user domain.UserID) error
	Remove(ctx context.Context, conversation domain.ConversationID, user domain.UserID) error
	Members(ctx context.Context, conversation domain.ConversationID) ([]domain.UserID, error)
}

// MembershipService resolves receivers from conversation memberships. Only
// members may send, and every other member receives.
type MembershipService struct {
	memberships Memberships
	log         *slog.Logger
}

func NewMembershipService(memberships Memberships, log *slog.Logger) *MembershipService {
	return &MembershipService{memberships: memberships, log: log}
}

// Join adds user to conversation.
func (s *MembershipService) Join(ctx context.Context, conversation domain.ConversationID, user domain.UserID) error {
	if err := s.memberships.Add(ctx, conversation, user); err != nil {
		return fmt.Errorf("join conversation %s: %w", conversation, err)
	}
	s.log.Info("User joined conversation", "user_id", user.String(), "conversation_id", conversation.String())
	return nil
}

// Leave removes user from conversation.
func (s *MembershipService) Leave(ctx context.Context, conversation domain.ConversationID, user domain.UserID) error {
	if err := s.memberships.Remove(ctx, conversation, user); err != nil {
		return fmt.Errorf("leave conversation %s: %w", conversation, err)
	}
	s.log.Info("User left conversation", "user_id", user.String(), "conversation_id", conversation.String())
	return nil
}

// Receivers returns the members of conversation other than sender.
func (s *MembershipService) Receivers(ctx context.Context, sender domain.UserID, conversation domain.ConversationID) ([]domain.UserID, error) {
	members, err := s.memberships.Members(ctx, conversation)
	if err != nil {
		return nil, fmt.Errorf("list members of %s: %w", conversation, err)
	}
	if !lo.Contains(members, sender) {
		return nil, ErrNotMember
	}
	return lo.Without(members, sender), nil
}
