package model

import "time"

// Session lifecycle states. A session only ever moves active -> closed.
const (
	SessionStatusActive = "active"
	SessionStatusClosed = "closed"
)

// Message sender roles. These are the only two legal values.
const (
	SenderUser  = "user"
	SenderAdmin = "admin"
)

// ChatSession is one support conversation between a visitor and staff.
type ChatSession struct {
	ID           string        `gorm:"primaryKey;size:36" json:"id"`
	UserName     string        `gorm:"size:200;not null" json:"user_name"`
	UserEmail    string        `gorm:"size:255;not null" json:"user_email"`
	Status       string        `gorm:"index;size:20;default:active;not null" json:"status"`
	StartTime    time.Time     `json:"start_time"`
	LastActivity time.Time     `gorm:"index" json:"last_activity"`
	CreatedAt    time.Time     `gorm:"autoCreateTime" json:"created_at"`
	Messages     []ChatMessage `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
}

// ChatMessage is immutable once written, except for the read flag which
// only ever flips false -> true.
type ChatMessage struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	SessionID string    `gorm:"index;size:36;not null" json:"session_id"`
	Sender    string    `gorm:"size:10;not null" json:"sender"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
}

// IsClosed reports whether the session no longer accepts messages.
func (s *ChatSession) IsClosed() bool {
	return s.Status == SessionStatusClosed
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
