// Package chat implements connection admission, message distribution and
// connection teardown for the chat server.
//
// A Hub owns the Registry of online users and the single Dispatcher. Each
// admitted connection runs a reader, a writer and a supervisor goroutine; the
// supervisor releases the registry entry once both I/O goroutines are gone.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Tyrowin/oxidechat/internal/domain"
	"golang.org/x/sync/errgroup"
)

// ErrHubClosed is returned by Join once Shutdown has started.
var ErrHubClosed = errors.New("hub closed")

// Options sizes the queues and limits of a Hub. RateLimitBurst caps the
// frames a connection may forward per RateLimitRefill; zero leaves
// connections unthrottled.
type Options struct {
	MailboxSize       int
	InboundBufferSize int
	RateLimitBurst    int
	RateLimitRefill   time.Duration
	PingPeriod        time.Duration
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		MailboxSize:       256,
		InboundBufferSize: 1024,
		RateLimitRefill:   time.Second,
		PingPeriod:        pingPeriod,
	}
}

func (o Options) sanitize() Options {
	def := DefaultOptions()
	if o.MailboxSize <= 0 {
		o.MailboxSize = def.MailboxSize
	}
	if o.InboundBufferSize <= 0 {
		o.InboundBufferSize = def.InboundBufferSize
	}
	if o.RateLimitBurst < 0 {
		o.RateLimitBurst = 0
	}
	if o.RateLimitRefill <= 0 {
		o.RateLimitRefill = def.RateLimitRefill
	}
	if o.PingPeriod <= 0 {
		o.PingPeriod = def.PingPeriod
	}
	return o
}

// Hub admits connections and distributes their messages.
type Hub struct {
	log        *slog.Logger
	opts       Options
	registry   *Registry
	dispatcher *Dispatcher

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	started atomic.Bool
	done    chan struct{}
}

// NewHub creates a Hub distributing messages with policy. Call Run to start
// the dispatcher.
func NewHub(log *slog.Logger, policy Policy, opts Options) *Hub {
	opts = opts.sanitize()
	ctx, cancel := context.WithCancel(context.Background())
	registry := NewRegistry()
	return &Hub{
		log:        log,
		opts:       opts,
		registry:   registry,
		dispatcher: NewDispatcher(registry, policy, opts.InboundBufferSize, log.With("component", "dispatcher")),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Registry exposes the hub's registry of online users.
func (h *Hub) Registry() *Registry { return h.registry }

// Online returns the number of registered connections.
func (h *Hub) Online() int { return h.registry.Len() }

// Run runs the dispatcher until Shutdown is called. It should be called in
// its own goroutine.
func (h *Hub) Run() {
	h.started.Store(true)
	defer close(h.done)
	h.dispatcher.Run(h.ctx)
}

// Join admits conn as the connection of id. The caller must already have
// authenticated id. A previous connection of the same user is displaced and
// closed; its supervisor leaves the new entry alone.
func (h *Hub) Join(conn Conn, id domain.UserID) (*Connection, error) {
	c, prev, err := h.admit(conn, id)
	if err != nil {
		return nil, err
	}

	// Closing a transport may block on a close handshake, so it happens
	// outside the admission lock.
	if prev != nil {
		c.log.Info("Displacing previous connection of user")
		prev.Close()
	}
	return c, nil
}

func (h *Hub) admit(conn Conn, id domain.UserID) (*Connection, *Connection, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return nil, nil, ErrHubClosed
	}

	c := newConnection(id, conn, h.opts, h.log)
	h.wg.Add(1)
	prev := h.registry.Insert(id, c)
	c.log.Info("Connection admitted", "online", h.registry.Len())

	h.supervise(c)
	return c, prev, nil
}

// supervise starts the reader and writer of c, and a goroutine that waits for
// both before removing c from the registry.
func (h *Hub) supervise(c *Connection) {
	var g errgroup.Group
	g.Go(func() error { return c.readLoop(h.ctx, h.dispatcher) })
	g.Go(func() error { return c.writeLoop(h.opts.PingPeriod) })

	go func() {
		defer h.wg.Done()
		err := g.Wait()
		removed := h.registry.RemoveConnection(c.userID, c)
		close(c.finished)
		c.log.Info("Connection finished",
			"removed", removed,
			"online", h.registry.Len(),
			"cause", err)
	}()
}

// Shutdown stops admissions, closes every connection and waits for their
// supervisors and the dispatcher to finish, or for timeout to elapse.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	h.log.Info("Initiating hub shutdown...")
	h.cancel()

	conns := h.registry.Snapshot()
	for _, c := range conns {
		c.Close()
	}
	h.log.Info("Closed client connections", "count", len(conns))

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		if h.started.Load() {
			<-h.done
		}
		close(finished)
	}()

	select {
	case <-finished:
		h.log.Info("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		h.log.Warn("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
