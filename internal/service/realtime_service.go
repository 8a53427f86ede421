package service

import (
	"log"

	"pos-sync-server/internal/domain"
	"pos-sync-server/internal/websocket"
)

// RealtimeService publishes entity-change events to the tenant broadcast
// scope. It implements EventPublisher for the product service; delivery is
// best-effort and never blocks or fails the request path.
type RealtimeService struct {
	manager *websocket.Manager
}

func NewRealtimeService(manager *websocket.Manager) *RealtimeService {
	return &RealtimeService{manager: manager}
}

func (s *RealtimeService) ProductCreated(accountID string, product *domain.Product) {
	s.publish(accountID, websocket.TypeProductCreated, &websocket.ProductEventPayload{Product: product})
}

func (s *RealtimeService) ProductUpdated(accountID string, product *domain.Product) {
	s.publish(accountID, websocket.TypeProductUpdated, &websocket.ProductEventPayload{Product: product})
}

func (s *RealtimeService) ProductDeleted(accountID, productID string) {
	s.publish(accountID, websocket.TypeProductDeleted, &websocket.ProductDeletedPayload{ProductID: productID})
}

func (s *RealtimeService) publish(accountID string, msgType websocket.MessageType, payload interface{}) {
	msg, err := websocket.NewMessage(msgType, payload)
	if err != nil {
		log.Printf("[Realtime] failed to build %s event: %v", msgType, err)
		return
	}
	if err := s.manager.BroadcastToAccount(accountID, msg); err != nil {
		log.Printf("[Realtime] failed to broadcast %s event: %v", msgType, err)
	}
}
