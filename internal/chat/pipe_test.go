package chat_test

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Tyrowin/oxidechat/internal/chat"
	"github.com/Tyrowin/oxidechat/internal/domain"
	"github.com/stretchr/testify/require"
)

var errBrokenPipe = errors.New("broken pipe")

// pipeConn is an in-memory transport. The test plays the client side through
// send and expect helpers.
type pipeConn struct {
	toServer   chan []byte
	toClient   chan []byte
	closed     chan struct{}
	once       sync.Once
	failWrites atomic.Bool
}

func newPipeConn() *pipeConn {
	return &pipeConn{
		toServer: make(chan []byte, 128),
		toClient: make(chan []byte, 128),
		closed:   make(chan struct{}),
	}
}

func (p *pipeConn) ReadFrame() ([]byte, error) {
	select {
	case data := <-p.toServer:
		return data, nil
	case <-p.closed:
		return nil, io.EOF
	}
}

func (p *pipeConn) WriteFrame(data []byte) error {
	if p.failWrites.Load() {
		return errBrokenPipe
	}
	select {
	case <-p.closed:
		return io.ErrClosedPipe
	default:
	}
	select {
	case p.toClient <- data:
		return nil
	case <-p.closed:
		return io.ErrClosedPipe
	}
}

func (p *pipeConn) Ping() error { return nil }

func (p *pipeConn) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}

func (p *pipeConn) sendRaw(t *testing.T, data string) {
	t.Helper()
	select {
	case p.toServer <- []byte(data):
	case <-time.After(time.Second):
		t.Fatal("timed out sending frame")
	}
}

func (p *pipeConn) send(t *testing.T, conversation domain.ConversationID, content string) {
	t.Helper()
	data, err := chat.EncodeClientFrame(chat.Send{ChatContent: chat.ChatContent{
		ConversationID: conversation,
		Content:        content,
	}})
	require.NoError(t, err)
	p.sendRaw(t, string(data))
}

func (p *pipeConn) expectDistribute(t *testing.T) chat.Distribute {
	t.Helper()
	select {
	case data := <-p.toClient:
		frame, err := chat.DecodeServerFrame(data)
		require.NoError(t, err)
		d, ok := frame.(chat.Distribute)
		require.True(t, ok)
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("expected a distribute frame")
		return chat.Distribute{}
	}
}

func (p *pipeConn) expectNothing(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case data := <-p.toClient:
		t.Fatalf("expected no frame, got %s", data)
	case <-time.After(wait):
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func startHub(t *testing.T, policy chat.Policy) *chat.Hub {
	t.Helper()
	hub := chat.NewHub(testLogger(), policy, chat.Options{
		PingPeriod: time.Hour,
	})
	go hub.Run()
	t.Cleanup(func() {
		_ = hub.Shutdown(2 * time.Second)
	})
	return hub
}

func join(t *testing.T, hub *chat.Hub, id domain.UserID) (*pipeConn, *chat.Connection) {
	t.Helper()
	pipe := newPipeConn()
	conn, err := hub.Join(pipe, id)
	require.NoError(t, err)
	return pipe, conn
}

func waitFinished(t *testing.T, c *chat.Connection) {
	t.Helper()
	select {
	case <-c.Finished():
	case <-time.After(2 * time.Second):
		t.Fatal("connection was not cleaned up")
	}
}
