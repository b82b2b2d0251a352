package chat

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Conn is the transport a connection's reader and writer talk to. ReadFrame is
// only called by the reader; WriteFrame and Ping only by the writer. Close may
// be called from any goroutine, any number of times.
type Conn interface {
	ReadFrame() ([]byte, error)
	WriteFrame(data []byte) error
	Ping() error
	Close() error
}

// WebSocketConn adapts a gorilla connection to Conn, keeping read deadlines
// alive through pongs.
type WebSocketConn struct {
	conn      *websocket.Conn
	log       *slog.Logger
	closeOnce sync.Once
	closeErr  error
}

// NewWebSocketConn wraps conn and applies the read limit.
func NewWebSocketConn(conn *websocket.Conn, maxMessageSize int64, log *slog.Logger) *WebSocketConn {
	c := &WebSocketConn{conn: conn, log: log}
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Debug("Setting initial read deadline failed", "error", err)
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	return c
}

// ReadFrame returns the next text or binary message.
func (c *WebSocketConn) ReadFrame() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		c.logReadError(err)
		return nil, err
	}
	return data, nil
}

// WriteFrame writes data as a single text message.
func (c *WebSocketConn) WriteFrame(data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Ping sends a keepalive ping.
func (c *WebSocketConn) Ping() error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// Close sends a best-effort close frame and closes the socket.
func (c *WebSocketConn) Close() error {
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		c.closeErr = c.conn.Close()
		if c.closeErr != nil && isExpectedCloseError(c.closeErr) {
			c.closeErr = nil
		}
	})
	return c.closeErr
}

func (c *WebSocketConn) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.log.Info("Frame exceeded maximum size")
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		c.log.Debug("Peer disconnected", "error", err)
	case errors.Is(err, io.EOF) || isExpectedCloseError(err):
		c.log.Debug("Connection closed", "error", err)
	default:
		c.log.Warn("WebSocket read error", "error", err)
	}
}

// isExpectedCloseError reports whether err is the usual noise of a socket
// that is already going away.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
