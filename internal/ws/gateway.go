package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/abdxl-cloud/RuqyaHub/internal/service/auth"
	"github.com/abdxl-cloud/RuqyaHub/internal/service/chat"
)

// Gateway upgrades HTTP requests to live chat connections and runs the
// per-connection protocol loop.
type Gateway struct {
	registry *Registry
	chat     *chat.Service
	auth     *auth.Service
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewGateway creates the realtime gateway. The registry is shared with
// the REST facade so both ingress paths broadcast through one place.
func NewGateway(registry *Registry, chatSvc *chat.Service, authSvc *auth.Service, log zerolog.Logger) *Gateway {
	return &Gateway{
		registry: registry,
		chat:     chatSvc,
		auth:     authSvc,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handle serves GET /ws/:id?token=... . The bearer token and the target
// session are both checked before any registration; a failure at either
// step closes the socket with a policy-violation code and leaves no
// trace in the registry.
func (g *Gateway) Handle(c *gin.Context) {
	sessionID := c.Param("id")
	token := c.Query("token")

	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	ctx := context.Background()

	user, err := g.auth.ValidateToken(ctx, token)
	if err != nil {
		g.reject(conn, "authentication failed")
		return
	}
	if _, err := g.chat.GetSession(ctx, sessionID); err != nil {
		g.reject(conn, "unknown session")
		return
	}

	client := newClient(sessionID, user.Role, conn)
	go client.writePump()

	g.registry.Connect(client, sessionID)
	g.registry.BroadcastToSession(sessionID, NewStatusEnvelope(g.registry.OnlineRoles(sessionID)))

	g.readLoop(ctx, client)
}

// readLoop is the single suspension point of a connection: one inbound
// frame at a time. Malformed frames and domain rejections are logged and
// skipped; only transport errors end the loop. Cleanup runs exactly once
// no matter which path got here.
func (g *Gateway) readLoop(ctx context.Context, c *Client) {
	defer func() {
		g.registry.Disconnect(c, c.sessionID)
		c.shutdown()
		g.registry.BroadcastToSession(c.sessionID, NewStatusEnvelope(g.registry.OnlineRoles(c.sessionID)))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.log.Debug().Err(err).Str("session_id", c.sessionID).Msg("websocket read ended")
			}
			return
		}

		env, err := DecodeInbound(data)
		if err != nil {
			g.log.Debug().Err(err).Str("session_id", c.sessionID).Msg("discarding malformed frame")
			continue
		}

		switch e := env.(type) {
		case InboundMessage:
			msg, err := g.chat.PostMessage(ctx, c.sessionID, e.Sender, e.Body)
			if err != nil {
				g.log.Warn().Err(err).Str("session_id", c.sessionID).Msg("message rejected")
				continue
			}
			g.registry.BroadcastToSession(c.sessionID, NewMessageEnvelope(msg))
		case InboundTyping:
			g.registry.BroadcastToSession(c.sessionID, NewTypingEnvelope(e.Sender, e.IsTyping))
		}
	}
}

// reject closes a freshly upgraded socket with a policy-violation code.
func (g *Gateway) reject(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = conn.Close()
}
