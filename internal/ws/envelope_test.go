package ws

import (
	"reflect"
	"testing"
	"time"

	"github.com/abdxl-cloud/RuqyaHub/internal/model"
)

func TestDecodeInbound(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    Inbound
		wantErr bool
	}{
		{
			name: "message",
			data: `{"type":"message","sender":"user","message":"hello"}`,
			want: InboundMessage{Sender: "user", Body: "hello"},
		},
		{
			name: "admin message",
			data: `{"type":"message","sender":"admin","message":"how can I help"}`,
			want: InboundMessage{Sender: "admin", Body: "how can I help"},
		},
		{
			name: "typing on",
			data: `{"type":"typing","sender":"user","is_typing":true}`,
			want: InboundTyping{Sender: "user", IsTyping: true},
		},
		{
			name: "typing off",
			data: `{"type":"typing","sender":"admin","is_typing":false}`,
			want: InboundTyping{Sender: "admin", IsTyping: false},
		},
		{name: "not json", data: `{{`, wantErr: true},
		{name: "unknown type", data: `{"type":"ping","sender":"user"}`, wantErr: true},
		{name: "missing sender", data: `{"type":"message","message":"hi"}`, wantErr: true},
		{name: "bad sender", data: `{"type":"message","sender":"moderator","message":"hi"}`, wantErr: true},
		{name: "message without body", data: `{"type":"message","sender":"user"}`, wantErr: true},
		{name: "typing without flag", data: `{"type":"typing","sender":"user"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeInbound([]byte(tt.data))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DecodeInbound() = %v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeInbound() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeInbound() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestNewMessageEnvelope(t *testing.T) {
	at := time.Unix(1700000000, 0)
	msg := &model.ChatMessage{
		ID:        "msg_1700000000_abc",
		SessionID: "s1",
		Sender:    model.SenderUser,
		Message:   "hello",
		Timestamp: at,
	}

	env := NewMessageEnvelope(msg)
	if env.Type != TypeMessage {
		t.Errorf("Type = %q, want %q", env.Type, TypeMessage)
	}
	if env.Timestamp != at.Unix() {
		t.Errorf("Timestamp = %d, want %d", env.Timestamp, at.Unix())
	}
	if env.ID != msg.ID || env.SessionID != msg.SessionID || env.Message != msg.Message {
		t.Errorf("envelope = %+v does not mirror message %+v", env, msg)
	}
}

func TestNewStatusEnvelope_NeverNil(t *testing.T) {
	env := NewStatusEnvelope(nil)
	if env.UsersOnline == nil {
		t.Error("UsersOnline must serialize as [], not null")
	}
	if len(env.UsersOnline) != 0 {
		t.Errorf("UsersOnline = %v, want empty", env.UsersOnline)
	}
}
