//go:generate go run go.uber.org/mock/mockgen -source=policy.go -destination=../mocks/mock_policy.go -package=mocks

package chat

import (
	"context"
	"log/slog"

	"github.com/Tyrowin/oxidechat/internal/domain"
	"github.com/samber/lo"
)

// Policy decides which registered connections receive an inbound message.
type Policy interface {
	Recipients(ctx context.Context, registry *Registry, msg Inbound) []*Connection
}

// ReceiverResolver yields the intended recipients of a message sent by sender
// into a conversation.
type ReceiverResolver interface {
	Receivers(ctx context.Context, sender domain.UserID, conversation domain.ConversationID) ([]domain.UserID, error)
}

// BroadcastPolicy delivers every message to every online user except its
// sender. The conversation id is carried through untouched.
type BroadcastPolicy struct{}

// Recipients implements Policy.
func (BroadcastPolicy) Recipients(_ context.Context, registry *Registry, msg Inbound) []*Connection {
	return lo.Filter(registry.Snapshot(), func(c *Connection, _ int) bool {
		return c.UserID() != msg.Sender
	})
}

// ConversationPolicy delivers a message only to the online users the resolver
// names for its conversation. A resolver error or an empty answer delivers to
// nobody.
type ConversationPolicy struct {
	Resolver ReceiverResolver
	Log      *slog.Logger
}

// Recipients implements Policy.
func (p ConversationPolicy) Recipients(ctx context.Context, registry *Registry, msg Inbound) []*Connection {
	ids, err := p.Resolver.Receivers(ctx, msg.Sender, msg.Content.ConversationID)
	if err != nil {
		p.Log.Warn("Resolving receivers failed; message not delivered",
			"sender", msg.Sender.String(),
			"conversation_id", msg.Content.ConversationID.String(),
			"error", err)
		return nil
	}

	return lo.FilterMap(lo.Uniq(ids), func(id domain.UserID, _ int) (*Connection, bool) {
		if id == msg.Sender {
			return nil, false
		}
		return registry.Get(id)
	})
}
