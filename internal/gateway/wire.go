package gateway

import (
	"bytes"
	"encoding/json"
	"time"
)

// Upstream payloads are camelCase and inconsistent about ids and nesting.
// These types accept every observed shape; normalize.go maps them to model types.

type wireIDs struct {
	ID      string `json:"id"`
	MongoID string `json:"_id"`
}

func (w *wireIDs) identity() string {
	if w.ID != "" {
		return w.ID
	}
	return w.MongoID
}

type identified interface {
	identity() string
}

// decodeRef reads a reference that is either a bare id or an embedded object.
func decodeRef(b []byte, target identified) (id string, embedded bool, err error) {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		return "", false, nil
	case b[0] == '"':
		err = json.Unmarshal(b, &id)
		return id, false, err
	case b[0] == '{':
		if err = json.Unmarshal(b, target); err != nil {
			return "", false, err
		}
		return target.identity(), true, nil
	default:
		// numeric ids
		return string(b), false, nil
	}
}

// idRef is a reference whose embedded form is never needed.
type idRef struct {
	ID string
}

func (r *idRef) UnmarshalJSON(b []byte) error {
	var w wireIDs
	id, _, err := decodeRef(b, &w)
	r.ID = id
	return err
}

type wireSeller struct {
	wireIDs
	ShopName    string `json:"shopName"`
	ManagerName string `json:"managerName"`
}

type sellerRef struct {
	ID     string
	Seller *wireSeller
}

func (r *sellerRef) UnmarshalJSON(b []byte) error {
	var w wireSeller
	id, embedded, err := decodeRef(b, &w)
	if err != nil {
		return err
	}
	r.ID = id
	if embedded {
		r.Seller = &w
	}
	return nil
}

type wireProduct struct {
	wireIDs
	Name       string          `json:"name"`
	Price      float64         `json:"price"`
	ImageURL   string          `json:"imageUrl"`
	Images     []string        `json:"images"`
	Seller     sellerRef       `json:"seller"`
	SellerID   string          `json:"sellerId"`
	SellerName string          `json:"sellerName"`
	SizeStocks []wireSizeStock `json:"sizeStocks"`
}

type productRef struct {
	ID      string
	Product *wireProduct
}

func (r *productRef) UnmarshalJSON(b []byte) error {
	var w wireProduct
	id, embedded, err := decodeRef(b, &w)
	if err != nil {
		return err
	}
	r.ID = id
	if embedded {
		r.Product = &w
	}
	return nil
}

type wireSizeStock struct {
	wireIDs
	Product   productRef `json:"product"`
	ProductID string     `json:"productId"`
	Size      string     `json:"size"`
	Quantity  int        `json:"quantity"`
}

type sizeStockRef struct {
	ID        string
	SizeStock *wireSizeStock
}

func (r *sizeStockRef) UnmarshalJSON(b []byte) error {
	var w wireSizeStock
	id, embedded, err := decodeRef(b, &w)
	if err != nil {
		return err
	}
	r.ID = id
	if embedded {
		r.SizeStock = &w
	}
	return nil
}

type wireCartItem struct {
	wireIDs
	Cart       idRef        `json:"cart"`
	SizeStock  sizeStockRef `json:"sizeStock"`
	Quantity   int          `json:"quantity"`
	TotalPrice float64      `json:"totalPrice"`
}

type wireCart struct {
	wireIDs
	User           idRef          `json:"user"`
	UserID         string         `json:"userId"`
	CartItems      []wireCartItem `json:"cartItems"`
	TotalCartValue float64        `json:"totalCartValue"`
}

type wireSellerRemoval struct {
	DeletedCount   int     `json:"deletedCount"`
	PriceReduction float64 `json:"priceReduction"`
}

type wireAddress struct {
	wireIDs
	User        idRef    `json:"user"`
	Seller      idRef    `json:"seller"`
	Street      string   `json:"street"`
	Ward        string   `json:"ward"`
	District    string   `json:"district"`
	Province    string   `json:"province"`
	FullAddress string   `json:"fullAddress"`
	PhoneNumber string   `json:"phoneNumber"`
	Phone       string   `json:"phone"`
	PostalCode  string   `json:"postalCode"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	IsDefault   bool     `json:"isDefault"`
}

// addressText is an order's address: a plain string, or an embedded address record.
type addressText string

func (a *addressText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = addressText(s)
		return nil
	}
	var w wireAddress
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*a = addressText(toAddress(&w).FullAddress)
	return nil
}

type wireOrderItem struct {
	SizeStock   sizeStockRef `json:"sizeStock"`
	SizeStockID string       `json:"sizeStockId"`
	Quantity    int          `json:"quantity"`
	Price       float64      `json:"price"`
}

type wireOrder struct {
	wireIDs
	User          idRef           `json:"user"`
	Seller        sellerRef       `json:"seller"`
	PhoneNumber   string          `json:"phoneNumber"`
	Phone         string          `json:"phone"`
	Address       addressText     `json:"address"`
	PostalCode    string          `json:"postalCode"`
	PaymentMethod string          `json:"paymentMethod"`
	OrderItems    []wireOrderItem `json:"orderItems"`
	Items         []wireOrderItem `json:"items"`
	TotalPrice    float64         `json:"totalPrice"`
	Status        string          `json:"status"`
	CheckoutAt    *time.Time      `json:"checkoutAt"`
	CreatedAt     *time.Time      `json:"createdAt"`
}

// Request bodies.

type wireQuantity struct {
	Quantity int `json:"quantity"`
}

type wireOrderItemRequest struct {
	SizeStock string  `json:"sizeStock"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type wireOrderRequest struct {
	User          string                 `json:"user"`
	Seller        string                 `json:"seller"`
	OrderItems    []wireOrderItemRequest `json:"orderItems"`
	Address       string                 `json:"address"`
	PhoneNumber   string                 `json:"phoneNumber"`
	PostalCode    string                 `json:"postalCode,omitempty"`
	PaymentMethod string                 `json:"paymentMethod"`
	TotalPrice    float64                `json:"totalPrice"`
	CheckoutAt    time.Time              `json:"checkoutAt"`
}

type wireStatus struct {
	Status string `json:"status"`
}

type wireAddressRequest struct {
	User        string   `json:"user,omitempty"`
	Seller      string   `json:"seller,omitempty"`
	Street      string   `json:"street"`
	Ward        string   `json:"ward"`
	District    string   `json:"district"`
	Province    string   `json:"province"`
	FullAddress string   `json:"fullAddress"`
	PhoneNumber string   `json:"phoneNumber"`
	PostalCode  string   `json:"postalCode,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	IsDefault   bool     `json:"isDefault"`
}
