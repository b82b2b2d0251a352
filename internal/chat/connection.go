package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Tyrowin/oxidechat/internal/domain"
)

var (
	errConnectionGone = errors.New("connection gone")
	errMailboxFull    = errors.New("mailbox full")
)

// Connection is the registry record of one admitted client: its identity, its
// outbound mailbox and the handle its supervisor closes once cleanup is done.
//
// The mailbox is never closed. Closing done is what tells the writer that the
// mailbox is finished, since the dispatcher may still be pushing to it.
type Connection struct {
	userID    domain.UserID
	conn      Conn
	mailbox   chan ServerFrame
	done      chan struct{}
	closeOnce sync.Once
	finished  chan struct{}
	limiter   *tokenBucket
	log       *slog.Logger
}

func newConnection(id domain.UserID, conn Conn, opts Options, log *slog.Logger) *Connection {
	return &Connection{
		userID:   id,
		conn:     conn,
		mailbox:  make(chan ServerFrame, opts.MailboxSize),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		limiter:  newLimiter(opts),
		log:      log.With("user_id", id.String()),
	}
}

// newLimiter returns nil when rate limiting is disabled.
func newLimiter(opts Options) *tokenBucket {
	if opts.RateLimitBurst <= 0 {
		return nil
	}
	return newTokenBucket(opts.RateLimitBurst, opts.RateLimitRefill)
}

// UserID returns the identity the connection was admitted with.
func (c *Connection) UserID() domain.UserID { return c.userID }

// Done is closed as soon as the connection starts shutting down.
func (c *Connection) Done() <-chan struct{} { return c.done }

// Finished is closed after both I/O tasks have stopped and the registry entry
// has been released.
func (c *Connection) Finished() <-chan struct{} { return c.finished }

// Push enqueues frame for the writer without blocking. Pushing to a closed
// connection or a full mailbox fails and the frame is dropped.
func (c *Connection) Push(frame ServerFrame) error {
	select {
	case <-c.done:
		return errConnectionGone
	default:
	}

	select {
	case c.mailbox <- frame:
		return nil
	case <-c.done:
		return errConnectionGone
	default:
		return errMailboxFull
	}
}

// Close stops both tasks of the connection. It is safe to call repeatedly and
// from any goroutine.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if err := c.conn.Close(); err != nil {
			c.log.Debug("Closing transport failed", "error", err)
		}
	})
}

// readLoop forwards decoded Send frames to the dispatcher until the transport
// fails or the connection is closed.
func (c *Connection) readLoop(ctx context.Context, d *Dispatcher) error {
	defer c.Close()

	for {
		data, err := c.conn.ReadFrame()
		if err != nil {
			select {
			case <-c.done:
				return nil
			default:
				return fmt.Errorf("read frame: %w", err)
			}
		}

		if c.limiter != nil && !c.limiter.allow() {
			c.log.Warn("Rate limit exceeded; dropping frame")
			continue
		}

		frame, err := DecodeClientFrame(data)
		if err != nil {
			c.log.Debug("Dropping undecodable frame", "error", err)
			continue
		}

		switch f := frame.(type) {
		case HistoryFetched:
		case Send:
			msg := Inbound{Sender: c.userID, Content: f.ChatContent}
			if err := d.Submit(ctx, c.done, msg); err != nil {
				return nil
			}
		}
	}
}

// writeLoop drains the mailbox onto the transport in order. The first failed
// write ends it.
func (c *Connection) writeLoop(pingPeriod time.Duration) error {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return nil
		case frame := <-c.mailbox:
			data, err := EncodeServerFrame(frame)
			if err != nil {
				c.log.Error("Encoding frame failed", "error", err)
				continue
			}
			if err := c.conn.WriteFrame(data); err != nil {
				return fmt.Errorf("write frame: %w", err)
			}
		case <-ticker.C:
			if err := c.conn.Ping(); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}
