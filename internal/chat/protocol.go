package chat

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Tyrowin/oxidechat/internal/domain"
)

// Frame type tags on the wire.
const (
	typeSend           = "send"
	typeHistoryFetched = "historyfetched"
	typeDistribute     = "distribute"
)

var (
	// ErrUnknownFrame is returned when an inbound frame carries a type tag the
	// server does not understand.
	ErrUnknownFrame = errors.New("unknown frame type")
	// ErrMalformedFrame is returned when an inbound frame is not valid JSON or
	// its payload does not match its type.
	ErrMalformedFrame = errors.New("malformed frame")
)

// ChatContent is the payload of a single chat message, independent of
// direction.
type ChatContent struct {
	ConversationID domain.ConversationID `json:"conversation_id"`
	Content        string                `json:"content"`
}

// ClientFrame is a frame sent by a client. The variants are HistoryFetched and
// Send.
type ClientFrame interface {
	clientFrame()
}

// HistoryFetched acknowledges a history fetch. It is accepted and ignored.
type HistoryFetched struct{}

// Send asks the server to distribute a chat message.
type Send struct {
	ChatContent
}

func (HistoryFetched) clientFrame() {}
func (Send) clientFrame()           {}

// ServerFrame is a frame sent by the server. Distribute is the only variant.
type ServerFrame interface {
	serverFrame()
}

// Distribute delivers a message from Sender to the receiving client.
type Distribute struct {
	Sender domain.UserID `json:"sender"`
	ChatContent
}

func (Distribute) serverFrame() {}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DecodeClientFrame parses one inbound text frame.
func DecodeClientFrame(data []byte) (ClientFrame, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	switch env.Type {
	case typeHistoryFetched:
		return HistoryFetched{}, nil
	case typeSend:
		if len(env.Payload) == 0 {
			return nil, fmt.Errorf("%w: send without payload", ErrMalformedFrame)
		}
		var send Send
		if err := json.Unmarshal(env.Payload, &send); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
		}
		if send.ConversationID.IsZero() {
			return nil, fmt.Errorf("%w: missing conversation_id", ErrMalformedFrame)
		}
		return send, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrame, env.Type)
	}
}

// EncodeServerFrame renders an outbound frame as one JSON object.
func EncodeServerFrame(frame ServerFrame) ([]byte, error) {
	var env envelope
	switch f := frame.(type) {
	case Distribute:
		payload, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		env = envelope{Type: typeDistribute, Payload: payload}
	default:
		return nil, fmt.Errorf("encode server frame: unsupported %T", frame)
	}
	return json.Marshal(env)
}

// EncodeClientFrame renders a client frame. The server never sends these; it
// exists for clients and tests speaking the same protocol.
func EncodeClientFrame(frame ClientFrame) ([]byte, error) {
	switch f := frame.(type) {
	case HistoryFetched:
		return json.Marshal(envelope{Type: typeHistoryFetched})
	case Send:
		payload, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		return json.Marshal(envelope{Type: typeSend, Payload: payload})
	default:
		return nil, fmt.Errorf("encode client frame: unsupported %T", frame)
	}
}

// DecodeServerFrame parses one outbound frame.
func DecodeServerFrame(data []byte) (ServerFrame, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if env.Type != typeDistribute {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrame, env.Type)
	}
	var d Distribute
	if err := json.Unmarshal(env.Payload, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return d, nil
}
