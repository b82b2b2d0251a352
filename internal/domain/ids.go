// Package domain defines the identifiers shared by every part of the chat
// server. Identifiers are opaque, immutable and comparable so they can be used
// directly as map keys.
package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// UserID identifies an authenticated participant. It marshals to and from its
// canonical uuid string form.
type UserID struct {
	uuid.UUID
}

// ConversationID scopes a set of messages.
type ConversationID struct {
	uuid.UUID
}

// NewUserID returns a random UserID.
func NewUserID() UserID {
	return UserID{uuid.New()}
}

// NewConversationID returns a random ConversationID.
func NewConversationID() ConversationID {
	return ConversationID{uuid.New()}
}

// ParseUserID parses the canonical uuid form of a UserID.
func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, fmt.Errorf("parse user id %q: %w", s, err)
	}
	return UserID{id}, nil
}

// ParseConversationID parses the canonical uuid form of a ConversationID.
func ParseConversationID(s string) (ConversationID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ConversationID{}, fmt.Errorf("parse conversation id %q: %w", s, err)
	}
	return ConversationID{id}, nil
}

// IsZero reports whether the id is the nil uuid.
func (id UserID) IsZero() bool { return id.UUID == uuid.Nil }

// IsZero reports whether the id is the nil uuid.
func (id ConversationID) IsZero() bool { return id.UUID == uuid.Nil }
