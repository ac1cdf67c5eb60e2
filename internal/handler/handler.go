package handler

import (
	"github.com/abdxl-cloud/RuqyaHub/internal/service"
	"github.com/abdxl-cloud/RuqyaHub/internal/ws"
)

// Handlers bundles the HTTP handlers.
type Handlers struct {
	Auth *AuthHandler
	Chat *ChatHandler
}

// NewHandlers wires all handlers. The registry handle comes from the
// composition root so REST and realtime share one broadcast path.
func NewHandlers(svc *service.Services, registry *ws.Registry) *Handlers {
	return &Handlers{
		Auth: NewAuthHandler(svc),
		Chat: NewChatHandler(svc, registry),
	}
}
