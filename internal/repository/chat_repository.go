package repository

import (
	"time"

	"github.com/abdxl-cloud/RuqyaHub/internal/model"
	"gorm.io/gorm"
)

// ChatRepository is the data access layer for sessions and messages.
type ChatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a chat repository.
func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// CreateSession persists a new session.
func (r *ChatRepository) CreateSession(session *model.ChatSession) error {
	return r.db.Create(session).Error
}

// GetSessionByID fetches one session.
func (r *ChatRepository) GetSessionByID(id string) (*model.ChatSession, error) {
	var session model.ChatSession
	err := r.db.Where("id = ?", id).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListSessions returns a page of sessions ordered by most recent activity,
// optionally filtered by status, plus the total match count.
func (r *ChatRepository) ListSessions(status string, offset, limit int) ([]*model.ChatSession, int64, error) {
	query := r.db.Model(&model.ChatSession{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sessions []*model.ChatSession
	err := query.Order("last_activity DESC").Offset(offset).Limit(limit).Find(&sessions).Error
	return sessions, total, err
}

// CloseSession marks the session closed. One-way transition.
func (r *ChatRepository) CloseSession(id string) error {
	return r.db.Model(&model.ChatSession{}).
		Where("id = ?", id).
		Update("status", model.SessionStatusClosed).Error
}

// CreateMessage persists a message and advances the owning session's
// last_activity in the same transaction, so a stored message is never
// visible without its activity bump.
func (r *ChatRepository) CreateMessage(msg *model.ChatMessage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&model.ChatSession{}).
			Where("id = ?", msg.SessionID).
			Update("last_activity", msg.Timestamp).Error
	})
}

// ListMessages returns a page of messages in chronological order plus the
// total count. Equal timestamps are broken by id so replay is stable.
func (r *ChatRepository) ListMessages(sessionID string, offset, limit int) ([]*model.ChatMessage, int64, error) {
	query := r.db.Model(&model.ChatMessage{}).Where("session_id = ?", sessionID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []*model.ChatMessage
	err := query.Order("timestamp ASC, id ASC").Offset(offset).Limit(limit).Find(&messages).Error
	return messages, total, err
}

// CountUnread counts unread visitor messages in one session.
func (r *ChatRepository) CountUnread(sessionID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.ChatMessage{}).
		Where("session_id = ? AND sender = ? AND read = ?", sessionID, model.SenderUser, false).
		Count(&count).Error
	return count, err
}

// CountUnreadTotal counts unread visitor messages across all sessions.
func (r *ChatRepository) CountUnreadTotal() (int64, error) {
	var count int64
	err := r.db.Model(&model.ChatMessage{}).
		Where("sender = ? AND read = ?", model.SenderUser, false).
		Count(&count).Error
	return count, err
}

// MarkRead flips all unread visitor messages in a session to read in a
// single set-based update. Admin messages are untouched.
func (r *ChatRepository) MarkRead(sessionID string) error {
	return r.db.Model(&model.ChatMessage{}).
		Where("session_id = ? AND sender = ? AND read = ?", sessionID, model.SenderUser, false).
		Update("read", true).Error
}

// TouchSession advances last_activity. Used outside the message write path.
func (r *ChatRepository) TouchSession(id string, at time.Time) error {
	return r.db.Model(&model.ChatSession{}).
		Where("id = ?", id).
		Update("last_activity", at).Error
}

// DeleteSession removes a session and its messages. Administrative purge
// only; normal closing is a status change.
func (r *ChatRepository) DeleteSession(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.ChatMessage{}, "session_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.ChatSession{}, "id = ?", id).Error
	})
}
