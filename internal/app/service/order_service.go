package service

import (
	"context"
	"errors"

	"github.com/ikkim/shopfront/internal/app/model"
	"github.com/ikkim/shopfront/internal/gateway"
	"github.com/ikkim/shopfront/pkg/logger"
)

// Actor is who is acting on an order.
type Actor struct {
	UserID   string
	SellerID string
	Admin    bool
}

func (a Actor) owns(o *model.Order) bool {
	if a.Admin {
		return true
	}
	return (a.UserID != "" && a.UserID == o.UserID) || (a.SellerID != "" && a.SellerID == o.SellerID)
}

// OrderService reflects and triggers the order lifecycle. Transitions are
// checked locally first; the gateway applies them and returns the result.
type OrderService interface {
	ListOrders(ctx context.Context, userID string) ([]model.Order, error)
	ListSellerOrders(ctx context.Context, sellerID string) ([]model.Order, error)
	GetOrder(ctx context.Context, actor Actor, orderID string) (*model.Order, error)
	Progress(ctx context.Context, sellerID, orderID string) (*model.Order, error)
	Cancel(ctx context.Context, actor Actor, orderID string) (*model.Order, error)
}

type orderService struct {
	orders gateway.OrderGateway
}

func NewOrderService(orders gateway.OrderGateway) OrderService {
	return &orderService{orders: orders}
}

func (s *orderService) ListOrders(ctx context.Context, userID string) ([]model.Order, error) {
	orders, err := s.orders.ListUserOrders(ctx, userID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return []model.Order{}, nil
		}
		logger.Error("Failed to list user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, networkError("list orders", err)
	}
	return orders, nil
}

func (s *orderService) ListSellerOrders(ctx context.Context, sellerID string) ([]model.Order, error) {
	orders, err := s.orders.ListSellerOrders(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return []model.Order{}, nil
		}
		logger.Error("Failed to list seller orders", err, map[string]interface{}{
			"seller_id": sellerID,
		})
		return nil, networkError("list seller orders", err)
	}
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, actor Actor, orderID string) (*model.Order, error) {
	order, err := s.fetch(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.owns(order) {
		logger.Warn("Order access denied", map[string]interface{}{
			"order_id": orderID,
			"user_id":  actor.UserID,
		})
		return nil, ErrForbidden
	}
	return order, nil
}

// Progress advances the order exactly one step along the forward chain.
func (s *orderService) Progress(ctx context.Context, sellerID, orderID string) (*model.Order, error) {
	order, err := s.GetOrder(ctx, Actor{SellerID: sellerID}, orderID)
	if err != nil {
		return nil, err
	}

	next, ok := model.NextStatus(order.Status)
	if !ok {
		logger.Warn("Order cannot progress", map[string]interface{}{
			"order_id": orderID,
			"status":   order.Status,
		})
		return nil, ErrInvalidTransition
	}

	logger.Info("Progressing order", map[string]interface{}{
		"order_id":  orderID,
		"seller_id": sellerID,
		"from":      order.Status,
		"to":        next,
	})

	updated, err := s.orders.UpdateStatus(ctx, orderID, next)
	if err != nil {
		logger.Error("Failed to progress order", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, networkError("progress order", err)
	}
	return updated, nil
}

// Cancel is allowed only while the order is PENDING or PROCESSING.
func (s *orderService) Cancel(ctx context.Context, actor Actor, orderID string) (*model.Order, error) {
	order, err := s.GetOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if !model.CanCancel(order.Status) {
		logger.Warn("Order cannot be cancelled", map[string]interface{}{
			"order_id": orderID,
			"status":   order.Status,
		})
		return nil, ErrInvalidTransition
	}

	logger.Info("Cancelling order", map[string]interface{}{
		"order_id": orderID,
		"user_id":  actor.UserID,
	})

	updated, err := s.orders.Cancel(ctx, orderID)
	if err != nil {
		logger.Error("Failed to cancel order", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, networkError("cancel order", err)
	}
	return updated, nil
}

func (s *orderService) fetch(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, networkError("get order", err)
	}
	return order, nil
}
