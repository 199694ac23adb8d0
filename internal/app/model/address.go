package model

// DeliveryAddress is owned by either a user or a seller, never both.
type DeliveryAddress struct {
	ID            string   `json:"id"`
	OwnerUserID   string   `json:"owner_user_id,omitempty"`
	OwnerSellerID string   `json:"owner_seller_id,omitempty"`
	Street        string   `json:"street"`
	Ward          string   `json:"ward"`
	District      string   `json:"district"`
	Province      string   `json:"province"`
	FullAddress   string   `json:"full_address"` // denormalized join of the structured parts
	Phone         string   `json:"phone"`
	PostalCode    string   `json:"postal_code,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	IsDefault     bool     `json:"is_default"`
}

// IsStructured reports whether any structured component is present.
func (a *DeliveryAddress) IsStructured() bool {
	return a.Street != "" || a.Ward != "" || a.District != "" || a.Province != ""
}
