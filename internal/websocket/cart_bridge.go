package websocket

import (
	"github.com/ikkim/shopfront/internal/app/service"
	"github.com/ikkim/shopfront/pkg/logger"
)

// BridgeCartUpdates pushes a cart_updated event to the user's devices after
// every store transition, and answers cart_refresh with the current view.
func BridgeCartUpdates(hub *Hub, registry *service.SessionRegistry) {
	registry.OnCreate(func(userID string, store *service.CartStore) {
		store.Subscribe(func(view service.CartView) {
			push(hub, userID, view)
		})
	})

	hub.OnRefresh(func(userID string) {
		store, ok := registry.Get(userID)
		if !ok {
			push(hub, userID, service.CartView{})
			return
		}
		push(hub, userID, store.View())
	})
}

func push(hub *Hub, userID string, view service.CartView) {
	if err := hub.SendToUser(userID, Event{Type: EventCartUpdated, Data: view}); err != nil {
		logger.Warn("Failed to push cart update", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}
