package model

import "time"

type OrderStatus string
type PaymentMethod string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"

	PaymentCOD    PaymentMethod = "COD"
	PaymentVietQR PaymentMethod = "VIETQR"
)

// forward chain; CANCELLED is reachable only through Cancel.
var nextStatus = map[OrderStatus]OrderStatus{
	OrderStatusPending:    OrderStatusProcessing,
	OrderStatusProcessing: OrderStatusShipped,
	OrderStatusShipped:    OrderStatusDelivered,
}

// NextStatus returns the single forward step from s.
func NextStatus(s OrderStatus) (OrderStatus, bool) {
	next, ok := nextStatus[s]
	return next, ok
}

func CanCancel(s OrderStatus) bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentVietQR
}

type Order struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	SellerID      string        `json:"seller_id"`
	Phone         string        `json:"phone"`
	Address       string        `json:"address"`
	PostalCode    string        `json:"postal_code,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Items         []OrderItem   `json:"items"`
	TotalPrice    float64       `json:"total_price"`
	Status        OrderStatus   `json:"status"`
	CheckoutAt    time.Time     `json:"checkout_at"`
	CreatedAt     time.Time     `json:"created_at"`
}

// OrderItem is a frozen copy of a cart line at checkout time.
type OrderItem struct {
	SizeStockID string  `json:"size_stock_id"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}
