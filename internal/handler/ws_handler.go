package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"pos-sync-server/internal/domain"
	"pos-sync-server/internal/websocket"
	"pos-sync-server/pkg/jwt"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	manager   *websocket.Manager
	jwtSecret string
	upgrader  ws.Upgrader
}

func NewWebSocketHandler(manager *websocket.Manager, jwtSecret string) *WebSocketHandler {
	return &WebSocketHandler{
		manager:   manager,
		jwtSecret: jwtSecret,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleConnection authenticates the handshake and gates it by plan: only
// ultra accounts receive realtime events. Rejections happen before the
// upgrade so the client sees a plain UNAUTHORIZED / PLAN_REQUIRED status.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = r.Header.Get("Authorization")
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}
	}

	if token == "" {
		http.Error(w, "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}

	claims, err := jwt.ValidateToken(token, h.jwtSecret)
	if err != nil {
		log.Printf("[WebSocket] token validation failed: %v", err)
		http.Error(w, "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}

	if domain.Plan(claims.Plan) != domain.PlanUltra {
		http.Error(w, "PLAN_REQUIRED", http.StatusForbidden)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WebSocket] failed to upgrade connection: %v", err)
		return
	}

	identity := &domain.Identity{
		UserID:    claims.UserID,
		AccountID: claims.AccountID,
		Role:      domain.Role(claims.Role),
		Plan:      domain.Plan(claims.Plan),
	}

	client := websocket.NewClient(uuid.New().String(), identity, conn, h.manager)

	h.manager.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

// WebSocketMessageHandler routes client messages: an explicit join_account
// puts the connection into its tenant broadcast scope.
type WebSocketMessageHandler struct{}

func NewWebSocketMessageHandler() *WebSocketMessageHandler {
	return &WebSocketMessageHandler{}
}

func (h *WebSocketMessageHandler) HandleWebSocketMessage(client *websocket.Client, msg *websocket.Message) error {
	switch msg.Type {
	case websocket.TypeJoinAccount:
		return h.handleJoinAccount(client, msg)

	case websocket.TypePing:
		return h.handlePing(client)

	default:
		log.Printf("unknown message type: %s", msg.Type)
	}

	return nil
}

func (h *WebSocketMessageHandler) handleJoinAccount(client *websocket.Client, msg *websocket.Message) error {
	var payload websocket.JoinAccountPayload
	if err := msg.UnmarshalPayload(&payload); err != nil {
		return err
	}

	// A client may only join the tenant scope its token belongs to.
	if payload.AccountID != client.AccountID {
		errMsg, err := websocket.NewMessage(websocket.TypeError, &websocket.ErrorPayload{
			Code:  "FORBIDDEN",
			Error: "cannot join another account's scope",
		})
		if err != nil {
			return err
		}
		return send(client, errMsg)
	}

	client.Manager.JoinAccount(client)

	joined, err := websocket.NewMessage(websocket.TypeJoined, &websocket.JoinAccountPayload{AccountID: client.AccountID})
	if err != nil {
		return err
	}
	return send(client, joined)
}

func (h *WebSocketMessageHandler) handlePing(client *websocket.Client) error {
	pong, err := websocket.NewMessage(websocket.TypePong, nil)
	if err != nil {
		return err
	}
	return send(client, pong)
}

func send(client *websocket.Client, msg *websocket.Message) error {
	bytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	select {
	case client.Send <- bytes:
	default:
	}
	return nil
}
