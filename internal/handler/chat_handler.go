package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/abdxl-cloud/RuqyaHub/internal/service"
	"github.com/abdxl-cloud/RuqyaHub/internal/service/chat"
	"github.com/abdxl-cloud/RuqyaHub/internal/ws"
)

// ChatHandler is the REST facade over the chat domain service. It is the
// fallback ingress for clients without a live connection; after a
// successful write it pushes a best-effort broadcast through the shared
// registry so connected peers see REST-submitted traffic too.
type ChatHandler struct {
	svc      *service.Services
	registry *ws.Registry
}

// NewChatHandler creates the chat REST handler.
func NewChatHandler(svc *service.Services, registry *ws.Registry) *ChatHandler {
	return &ChatHandler{svc: svc, registry: registry}
}

// OpenSession handles POST /chat/sessions. Anonymous.
func (h *ChatHandler) OpenSession(c *gin.Context) {
	var req chat.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	session, err := h.svc.Chat.OpenSession(c.Request.Context(), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}
	created(c, session)
}

// ListSessions handles GET /chat/sessions. Admin only (route-level).
func (h *ChatHandler) ListSessions(c *gin.Context) {
	page, size := getPagination(c)
	status := c.Query("status")

	sessions, total, err := h.svc.Chat.ListSessions(c.Request.Context(), status, page, size)
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, gin.H{
		"items": sessions,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

// GetSession handles GET /chat/sessions/:id.
func (h *ChatHandler) GetSession(c *gin.Context) {
	session, err := h.svc.Chat.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, session)
}

// ListMessages handles GET /chat/sessions/:id/messages.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	page, size := getPagination(c)

	messages, total, err := h.svc.Chat.ListMessages(c.Request.Context(), c.Param("id"), page, size)
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, gin.H{
		"items": messages,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

// PostMessageRequest is the REST message body.
type PostMessageRequest struct {
	Sender  string `json:"sender" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// PostMessage handles POST /chat/sessions/:id/messages. Persistence is
// the success criterion; the follow-up broadcast is best effort and an
// empty session bucket is perfectly fine.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	sessionID := c.Param("id")
	msg, err := h.svc.Chat.PostMessage(c.Request.Context(), sessionID, req.Sender, req.Message)
	if err != nil {
		errorResponse(c, err)
		return
	}

	h.registry.BroadcastToSession(sessionID, ws.NewMessageEnvelope(msg))

	created(c, msg)
}

// CloseSession handles PATCH /chat/sessions/:id/close. Admin only.
// Live connections are told, not dropped; clients disconnect themselves.
func (h *ChatHandler) CloseSession(c *gin.Context) {
	sessionID := c.Param("id")
	session, err := h.svc.Chat.CloseSession(c.Request.Context(), sessionID)
	if err != nil {
		errorResponse(c, err)
		return
	}

	h.registry.BroadcastToSession(sessionID, ws.NewCloseEnvelope("Session ended by admin"))

	success(c, session)
}

// MarkRead handles PATCH /chat/sessions/:id/mark-read. Admin only.
func (h *ChatHandler) MarkRead(c *gin.Context) {
	sessionID := c.Param("id")
	if err := h.svc.Chat.MarkRead(c.Request.Context(), sessionID); err != nil {
		errorResponse(c, err)
		return
	}

	session, err := h.svc.Chat.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, session)
}

// UnreadCount handles GET /chat/unread-count. Admin only.
func (h *ChatHandler) UnreadCount(c *gin.Context) {
	total, err := h.svc.Chat.UnreadTotal(c.Request.Context())
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, gin.H{"total_unread": total})
}

// Presence handles GET /chat/sessions/:id/presence. Registry membership
// is the only source of truth here; nothing is read from the database.
func (h *ChatHandler) Presence(c *gin.Context) {
	sessionID := c.Param("id")
	roles := h.registry.OnlineRoles(sessionID)
	if roles == nil {
		roles = []string{}
	}
	success(c, gin.H{
		"online":       h.registry.IsOnline(sessionID),
		"users_online": roles,
	})
}
