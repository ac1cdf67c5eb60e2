package ws

import (
	"encoding/json"
	"errors"

	"github.com/abdxl-cloud/RuqyaHub/internal/model"
)

// Envelope type discriminators on the wire.
const (
	TypeMessage = "message"
	TypeTyping  = "typing"
	TypeStatus  = "status"
	TypeClose   = "close"
)

// ErrUnknownEnvelope marks an inbound frame that does not match the
// client contract. The gateway discards such frames without closing.
var ErrUnknownEnvelope = errors.New("unknown envelope")

// Inbound is a decoded client frame: either InboundMessage or
// InboundTyping. Invalid combinations do not survive decoding.
type Inbound interface {
	isInbound()
}

// InboundMessage asks the server to persist and fan out a chat message.
type InboundMessage struct {
	Sender string
	Body   string
}

// InboundTyping is a transient typing indicator. Never persisted.
type InboundTyping struct {
	Sender   string
	IsTyping bool
}

func (InboundMessage) isInbound() {}
func (InboundTyping) isInbound()  {}

// DecodeInbound parses a client frame into its variant. Anything that is
// not a well-formed message or typing frame comes back as an error.
func DecodeInbound(data []byte) (Inbound, error) {
	var raw struct {
		Type     string `json:"type"`
		Sender   string `json:"sender"`
		Message  string `json:"message"`
		IsTyping *bool  `json:"is_typing"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.Sender != model.SenderUser && raw.Sender != model.SenderAdmin {
		return nil, ErrUnknownEnvelope
	}

	switch raw.Type {
	case TypeMessage:
		if raw.Message == "" {
			return nil, ErrUnknownEnvelope
		}
		return InboundMessage{Sender: raw.Sender, Body: raw.Message}, nil
	case TypeTyping:
		if raw.IsTyping == nil {
			return nil, ErrUnknownEnvelope
		}
		return InboundTyping{Sender: raw.Sender, IsTyping: *raw.IsTyping}, nil
	default:
		return nil, ErrUnknownEnvelope
	}
}

// MessageEnvelope is the server->client broadcast of a stored message.
type MessageEnvelope struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
	Read      bool   `json:"read"`
}

// NewMessageEnvelope converts a persisted message into its broadcast
// form. Timestamps travel as epoch seconds.
func NewMessageEnvelope(m *model.ChatMessage) MessageEnvelope {
	return MessageEnvelope{
		Type:      TypeMessage,
		ID:        m.ID,
		SessionID: m.SessionID,
		Sender:    m.Sender,
		Message:   m.Message,
		Timestamp: m.Timestamp.Unix(),
		Read:      m.Read,
	}
}

// TypingEnvelope forwards a typing indicator verbatim.
type TypingEnvelope struct {
	Type     string `json:"type"`
	Sender   string `json:"sender"`
	IsTyping bool   `json:"is_typing"`
}

// NewTypingEnvelope builds the broadcast form of a typing indicator.
func NewTypingEnvelope(sender string, isTyping bool) TypingEnvelope {
	return TypingEnvelope{Type: TypeTyping, Sender: sender, IsTyping: isTyping}
}

// StatusEnvelope announces who is currently online in a session.
type StatusEnvelope struct {
	Type        string   `json:"type"`
	UsersOnline []string `json:"users_online"`
}

// NewStatusEnvelope builds a presence announcement from the registry's
// current view.
func NewStatusEnvelope(roles []string) StatusEnvelope {
	if roles == nil {
		roles = []string{}
	}
	return StatusEnvelope{Type: TypeStatus, UsersOnline: roles}
}

// CloseEnvelope tells clients the session was ended server-side. The
// server does not force-drop connections; clients disconnect themselves.
type CloseEnvelope struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// NewCloseEnvelope builds a session-closed announcement.
func NewCloseEnvelope(reason string) CloseEnvelope {
	return CloseEnvelope{Type: TypeClose, Reason: reason}
}
