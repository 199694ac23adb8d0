package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopfront/internal/app/service"
	apperrors "github.com/ikkim/shopfront/internal/errors"
	"github.com/ikkim/shopfront/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

func actorFrom(c *gin.Context) service.Actor {
	userID, _ := middleware.GetUserID(c)
	sellerID, _ := middleware.GetSellerID(c)
	role, _ := middleware.GetUserRole(c)
	return service.Actor{
		UserID:   userID,
		SellerID: sellerID,
		Admin:    role == middleware.RoleAdmin,
	}
}

func requireSeller(c *gin.Context) (string, bool) {
	sellerID, ok := middleware.GetSellerID(c)
	if !ok {
		middleware.GetLoggerFromContext(c).Warn("Seller token without seller id", nil)
		apperrors.Forbidden(c, "Seller account required")
		return "", false
	}
	return sellerID, true
}

// GetOrders lists the buyer's orders.
// GET /api/v1/orders
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	userID, _, ok := requireUser(c)
	if !ok {
		return
	}

	orders, err := ctrl.orderService.ListOrders(upstreamContext(c), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrderByID returns one order the caller bought or sold.
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	if _, _, ok := requireUser(c); !ok {
		return
	}

	order, err := ctrl.orderService.GetOrder(upstreamContext(c), actorFrom(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CancelOrder cancels an order the caller bought.
// POST /api/v1/orders/:id/cancel
func (ctrl *OrderController) CancelOrder(c *gin.Context) {
	userID, _, ok := requireUser(c)
	if !ok {
		return
	}

	order, err := ctrl.orderService.Cancel(upstreamContext(c), service.Actor{UserID: userID}, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	middleware.GetLoggerFromContext(c).Info("Order cancelled by buyer", map[string]interface{}{
		"order_id": order.ID,
	})
	c.JSON(http.StatusOK, order)
}

// GetSellerOrders lists orders placed with the caller's shop.
// GET /api/v1/seller/orders
func (ctrl *OrderController) GetSellerOrders(c *gin.Context) {
	sellerID, ok := requireSeller(c)
	if !ok {
		return
	}

	orders, err := ctrl.orderService.ListSellerOrders(upstreamContext(c), sellerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// ProgressOrder moves an order one step along its lifecycle.
// POST /api/v1/seller/orders/:id/progress
func (ctrl *OrderController) ProgressOrder(c *gin.Context) {
	sellerID, ok := requireSeller(c)
	if !ok {
		return
	}

	order, err := ctrl.orderService.Progress(upstreamContext(c), sellerID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	middleware.GetLoggerFromContext(c).Info("Order progressed", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})
	c.JSON(http.StatusOK, order)
}

// SellerCancelOrder cancels an order placed with the caller's shop.
// POST /api/v1/seller/orders/:id/cancel
func (ctrl *OrderController) SellerCancelOrder(c *gin.Context) {
	sellerID, ok := requireSeller(c)
	if !ok {
		return
	}

	order, err := ctrl.orderService.Cancel(upstreamContext(c), service.Actor{SellerID: sellerID}, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
