package gateway

import (
	"context"
	"time"

	"github.com/ikkim/shopfront/internal/app/model"
)

type CartGateway interface {
	// GetCart returns (nil, nil) when the user has no cart yet.
	GetCart(ctx context.Context, userID string) (*model.Cart, error)
	AddItem(ctx context.Context, userID string, req AddItemRequest) error
	UpdateItem(ctx context.Context, userID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, userID, itemID string) error
	RemoveSellerItems(ctx context.Context, userID, sellerID string) (*SellerRemoval, error)
}

type OrderGateway interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*model.Order, error)
	ListUserOrders(ctx context.Context, userID string) ([]model.Order, error)
	ListSellerOrders(ctx context.Context, sellerID string) ([]model.Order, error)
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error)
	Cancel(ctx context.Context, orderID string) (*model.Order, error)
}

type AddressGateway interface {
	ListAddresses(ctx context.Context, userID string) ([]model.DeliveryAddress, error)
	CreateAddress(ctx context.Context, addr *model.DeliveryAddress) (*model.DeliveryAddress, error)
	UpdateAddress(ctx context.Context, addr *model.DeliveryAddress) (*model.DeliveryAddress, error)
	DeleteAddress(ctx context.Context, addressID string) error
}

type CatalogGateway interface {
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
	ListProducts(ctx context.Context, q ProductQuery) ([]model.Product, error)
}

type AddItemRequest struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// SellerRemoval is the upstream's confirmation of a bulk seller removal.
type SellerRemoval struct {
	DeletedCount   int     `json:"deleted_count"`
	PriceReduction float64 `json:"price_reduction"`
}

type CreateOrderRequest struct {
	UserID        string
	SellerID      string
	Items         []model.OrderItem
	Address       string
	Phone         string
	PostalCode    string
	PaymentMethod model.PaymentMethod
	TotalPrice    float64
	CheckoutAt    time.Time
}

type ProductQuery struct {
	Page     int
	Limit    int
	Search   string
	SellerID string
}
