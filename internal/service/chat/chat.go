package chat

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/abdxl-cloud/RuqyaHub/internal/model"
	"github.com/abdxl-cloud/RuqyaHub/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Domain errors. Handlers map these onto HTTP statuses; the realtime
// gateway logs them and keeps the connection open.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrSessionNotFound = errors.New("chat session not found")
	ErrSessionClosed   = errors.New("chat session is closed")
)

// Service owns the session and message business rules. Both the REST
// facade and the realtime gateway funnel message creation through
// PostMessage; there is no second write path.
type Service struct {
	repo *repository.Repositories
}

// NewService creates the chat service.
func NewService(repo *repository.Repositories) *Service {
	return &Service{repo: repo}
}

// OpenSessionRequest starts a conversation. No account required.
type OpenSessionRequest struct {
	UserName  string `json:"user_name" binding:"required"`
	UserEmail string `json:"user_email" binding:"required"`
}

// SessionWithUnread decorates a session with its unread visitor-message
// count for the staff inbox view.
type SessionWithUnread struct {
	model.ChatSession
	UnreadCount int64 `json:"unread_count"`
}

// OpenSession creates an active session with both time fields set to now.
func (s *Service) OpenSession(ctx context.Context, req *OpenSessionRequest) (*model.ChatSession, error) {
	name := strings.TrimSpace(req.UserName)
	if name == "" {
		return nil, fmt.Errorf("%w: user_name must not be empty", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(req.UserEmail); err != nil {
		return nil, fmt.Errorf("%w: user_email is not a valid address", ErrInvalidInput)
	}

	now := time.Now()
	session := &model.ChatSession{
		ID:           uuid.New().String(),
		UserName:     name,
		UserEmail:    req.UserEmail,
		Status:       model.SessionStatusActive,
		StartTime:    now,
		LastActivity: now,
	}

	if err := s.repo.Chat.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// GetSession fetches one session.
func (s *Service) GetSession(ctx context.Context, id string) (*model.ChatSession, error) {
	session, err := s.repo.Chat.GetSessionByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// ListSessions returns a page of sessions, most recently active first,
// each with its unread count. Staff inbox only.
func (s *Service) ListSessions(ctx context.Context, status string, page, size int) ([]*SessionWithUnread, int64, error) {
	switch status {
	case "", model.SessionStatusActive, model.SessionStatusClosed:
	default:
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	page, size = normalizePage(page, size)

	sessions, total, err := s.repo.Chat.ListSessions(status, (page-1)*size, size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	items := make([]*SessionWithUnread, 0, len(sessions))
	for _, session := range sessions {
		unread, err := s.repo.Chat.CountUnread(session.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to count unread messages: %w", err)
		}
		items = append(items, &SessionWithUnread{ChatSession: *session, UnreadCount: unread})
	}
	return items, total, nil
}

// ListMessages returns a page of messages in chronological order, oldest
// first, so history reads top to bottom.
func (s *Service) ListMessages(ctx context.Context, sessionID string, page, size int) ([]*model.ChatMessage, int64, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, 0, err
	}
	page, size = normalizePage(page, size)

	messages, total, err := s.repo.Chat.ListMessages(sessionID, (page-1)*size, size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, total, nil
}

// PostMessage validates, persists and returns a new message, bumping the
// session's last_activity along the way. Every ingress path calls this;
// broadcasting is the caller's concern and happens only after this
// returns, so clients never see a message that history would not show.
func (s *Service) PostMessage(ctx context.Context, sessionID, sender, body string) (*model.ChatMessage, error) {
	if sender != model.SenderUser && sender != model.SenderAdmin {
		return nil, fmt.Errorf("%w: sender must be %q or %q", ErrInvalidInput, model.SenderUser, model.SenderAdmin)
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: message must not be empty", ErrInvalidInput)
	}

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsClosed() {
		return nil, ErrSessionClosed
	}

	now := time.Now()
	msg := &model.ChatMessage{
		ID:        newMessageID(now),
		SessionID: sessionID,
		Sender:    sender,
		Message:   body,
		Read:      false,
		Timestamp: now,
	}

	if err := s.repo.Chat.CreateMessage(msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return msg, nil
}

// CloseSession marks the session closed. Closing an already-closed
// session is a no-op success so the staff UI can close blindly.
func (s *Service) CloseSession(ctx context.Context, id string) (*model.ChatSession, error) {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.IsClosed() {
		return session, nil
	}

	if err := s.repo.Chat.CloseSession(id); err != nil {
		return nil, fmt.Errorf("failed to close session: %w", err)
	}
	session.Status = model.SessionStatusClosed
	return session, nil
}

// MarkRead flips every unread visitor message in the session to read.
// Single set-based update; no read-then-write race under concurrent
// senders.
func (s *Service) MarkRead(ctx context.Context, sessionID string) error {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return err
	}
	if err := s.repo.Chat.MarkRead(sessionID); err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

// UnreadTotal counts unread visitor messages across all sessions.
func (s *Service) UnreadTotal(ctx context.Context) (int64, error) {
	total, err := s.repo.Chat.CountUnreadTotal()
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return total, nil
}

// newMessageID keeps the time-prefixed id shape but backs the suffix with
// a UUID so concurrent writers cannot collide.
func newMessageID(t time.Time) string {
	return fmt.Sprintf("msg_%d_%s", t.Unix(), uuid.New().String())
}

func normalizePage(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}
