package chat

import (
	"context"
	"log/slog"

	"github.com/Tyrowin/oxidechat/internal/domain"
)

// Inbound is a Send frame tagged with the identity of the connection that
// read it.
type Inbound struct {
	Sender  domain.UserID
	Content ChatContent
}

// Dispatcher is the single consumer of every inbound message. Messages are
// handled one at a time in the order they were enqueued, which keeps each
// sender's messages in order for every recipient.
type Dispatcher struct {
	inbound  chan Inbound
	registry *Registry
	policy   Policy
	log      *slog.Logger
}

// NewDispatcher builds a dispatcher reading from a queue of bufferSize
// messages.
func NewDispatcher(registry *Registry, policy Policy, bufferSize int, log *slog.Logger) *Dispatcher {
	if bufferSize < 0 {
		bufferSize = 0
	}
	return &Dispatcher{
		inbound:  make(chan Inbound, bufferSize),
		registry: registry,
		policy:   policy,
		log:      log,
	}
}

// Submit enqueues msg. It blocks while the queue is full and gives up when ctx
// is cancelled or cancel is closed.
func (d *Dispatcher) Submit(ctx context.Context, cancel <-chan struct{}, msg Inbound) error {
	select {
	case d.inbound <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-cancel:
		return errConnectionGone
	}
}

// Run consumes the queue until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	d.log.Info("Dispatcher started")
	for {
		select {
		case <-ctx.Done():
			d.log.Info("Dispatcher stopped")
			return
		case msg := <-d.inbound:
			d.dispatch(ctx, msg)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, msg Inbound) {
	recipients := d.policy.Recipients(ctx, d.registry, msg)
	frame := Distribute{Sender: msg.Sender, ChatContent: msg.Content}

	delivered := 0
	for _, c := range recipients {
		if err := c.Push(frame); err != nil {
			d.log.Debug("Dropping frame for recipient",
				"recipient", c.UserID().String(), "error", err)
			continue
		}
		delivered++
	}
	d.log.Debug("Distributed message",
		"sender", msg.Sender.String(),
		"conversation_id", msg.Content.ConversationID.String(),
		"recipients", len(recipients),
		"delivered", delivered)
}
