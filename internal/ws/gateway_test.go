package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/abdxl-cloud/RuqyaHub/internal/model"
	"github.com/abdxl-cloud/RuqyaHub/internal/repository"
	"github.com/abdxl-cloud/RuqyaHub/internal/service/auth"
	"github.com/abdxl-cloud/RuqyaHub/internal/service/chat"
	"github.com/abdxl-cloud/RuqyaHub/internal/testutil"
)

type gatewayFixture struct {
	server   *httptest.Server
	registry *Registry
	chat     *chat.Service
	auth     *auth.Service
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	repos := repository.NewRepositories(db)
	chatSvc := chat.NewService(repos)
	authSvc := auth.NewService(repos, testutil.TestAuthConfig())
	registry := NewRegistry(zerolog.Nop())
	gateway := NewGateway(registry, chatSvc, authSvc, zerolog.Nop())

	testutil.CreateUser(t, db, "admin@ruqyahub.com", "s3cret", model.RoleAdmin)
	testutil.CreateUser(t, db, "visitor@ruqyahub.com", "s3cret", model.RoleUser)

	router := gin.New()
	router.GET("/ws/:id", gateway.Handle)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &gatewayFixture{server: server, registry: registry, chat: chatSvc, auth: authSvc}
}

func (f *gatewayFixture) token(t *testing.T, email string) string {
	t.Helper()
	resp, err := f.auth.Login(context.Background(), &auth.LoginRequest{Email: email, Password: "s3cret"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	return resp.Token
}

func (f *gatewayFixture) openSession(t *testing.T) *model.ChatSession {
	t.Helper()
	session, err := f.chat.OpenSession(context.Background(), &chat.OpenSessionRequest{
		UserName:  "Visitor",
		UserEmail: "visitor@example.com",
	})
	if err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}
	return session
}

func (f *gatewayFixture) dial(t *testing.T, sessionID, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/" + sessionID + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readEnvelope reads the next frame and decodes it into a generic map.
func readEnvelope(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var env map[string]interface{}
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("failed to decode envelope %q: %v", data, err)
	}
	return env
}

// waitForType skips frames until one of the wanted type arrives. Presence
// announcements interleave with chat traffic, so tests filter by type.
func waitForType(t *testing.T, conn *websocket.Conn, typ string) map[string]interface{} {
	t.Helper()
	for i := 0; i < 10; i++ {
		env := readEnvelope(t, conn)
		if env["type"] == typ {
			return env
		}
	}
	t.Fatalf("no %q envelope arrived", typ)
	return nil
}

func expectPolicyViolation(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	closeErr, ok := err.(*websocket.CloseError)
	if !ok {
		t.Fatalf("ReadMessage() error = %v, want close error", err)
	}
	if closeErr.Code != websocket.ClosePolicyViolation {
		t.Errorf("close code = %d, want %d", closeErr.Code, websocket.ClosePolicyViolation)
	}
}

func TestGateway_RejectsBadToken(t *testing.T) {
	f := newGatewayFixture(t)
	session := f.openSession(t)

	conn := f.dial(t, session.ID, "not-a-token")
	expectPolicyViolation(t, conn)

	if f.registry.IsOnline(session.ID) {
		t.Error("rejected connection left a registry entry")
	}
}

func TestGateway_RejectsUnknownSession(t *testing.T) {
	f := newGatewayFixture(t)
	token := f.token(t, "visitor@ruqyahub.com")

	conn := f.dial(t, "no-such-session", token)
	expectPolicyViolation(t, conn)
}

func TestGateway_StatusOnJoin(t *testing.T) {
	f := newGatewayFixture(t)
	session := f.openSession(t)

	conn := f.dial(t, session.ID, f.token(t, "visitor@ruqyahub.com"))

	env := waitForType(t, conn, TypeStatus)
	roles, _ := env["users_online"].([]interface{})
	if len(roles) != 1 || roles[0] != "user" {
		t.Errorf("users_online = %v, want [user]", roles)
	}
}

func TestGateway_MessageFanOutAndPersist(t *testing.T) {
	f := newGatewayFixture(t)
	session := f.openSession(t)

	visitor := f.dial(t, session.ID, f.token(t, "visitor@ruqyahub.com"))
	admin := f.dial(t, session.ID, f.token(t, "admin@ruqyahub.com"))

	frame := `{"type":"message","sender":"user","message":"assalamu alaikum"}`
	if err := visitor.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}

	for name, conn := range map[string]*websocket.Conn{"visitor": visitor, "admin": admin} {
		env := waitForType(t, conn, TypeMessage)
		if env["message"] != "assalamu alaikum" || env["sender"] != "user" {
			t.Errorf("%s received %v, want the broadcast message", name, env)
		}
		id, _ := env["id"].(string)
		if !strings.HasPrefix(id, "msg_") {
			t.Errorf("%s received id %q, want msg_ prefix", name, id)
		}
	}

	messages, total, err := f.chat.ListMessages(context.Background(), session.ID, 1, 10)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if total != 1 || messages[0].Message != "assalamu alaikum" {
		t.Errorf("persisted %d messages, want the broadcast one stored exactly once", total)
	}
}

func TestGateway_TypingIsTransient(t *testing.T) {
	f := newGatewayFixture(t)
	session := f.openSession(t)

	visitor := f.dial(t, session.ID, f.token(t, "visitor@ruqyahub.com"))
	admin := f.dial(t, session.ID, f.token(t, "admin@ruqyahub.com"))

	frame := `{"type":"typing","sender":"user","is_typing":true}`
	if err := visitor.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}

	env := waitForType(t, admin, TypeTyping)
	if env["is_typing"] != true || env["sender"] != "user" {
		t.Errorf("typing envelope = %v", env)
	}

	_, total, err := f.chat.ListMessages(context.Background(), session.ID, 1, 10)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if total != 0 {
		t.Errorf("typing indicator was persisted, message count = %d", total)
	}
}

func TestGateway_MalformedFrameDoesNotKillConnection(t *testing.T) {
	f := newGatewayFixture(t)
	session := f.openSession(t)

	conn := f.dial(t, session.ID, f.token(t, "visitor@ruqyahub.com"))

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	frame := `{"type":"message","sender":"user","message":"still here"}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}

	env := waitForType(t, conn, TypeMessage)
	if env["message"] != "still here" {
		t.Errorf("envelope = %v, want the follow-up message", env)
	}
}

func TestGateway_DisconnectUpdatesPresence(t *testing.T) {
	f := newGatewayFixture(t)
	session := f.openSession(t)

	visitor := f.dial(t, session.ID, f.token(t, "visitor@ruqyahub.com"))
	admin := f.dial(t, session.ID, f.token(t, "admin@ruqyahub.com"))
	waitForType(t, admin, TypeStatus)

	_ = visitor.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = visitor.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		env := waitForType(t, admin, TypeStatus)
		roles, _ := env["users_online"].([]interface{})
		if len(roles) == 1 && roles[0] == "admin" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("presence never settled to [admin], last seen %v", roles)
		}
	}

	if roles := f.registry.OnlineRoles(session.ID); len(roles) != 1 || roles[0] != "admin" {
		t.Errorf("OnlineRoles() = %v, want [admin] after visitor left", roles)
	}
}
