package model

// Seller owns products. ManagerName is the fallback display name.
type Seller struct {
	ID          string `json:"id"`
	ShopName    string `json:"shop_name,omitempty"`
	ManagerName string `json:"manager_name,omitempty"`
}

type Product struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Price      float64     `json:"price"`
	ImageURL   string      `json:"image_url,omitempty"`
	SellerID   string      `json:"seller_id"`
	SellerName string      `json:"seller_name,omitempty"` // denormalized by the upstream on some endpoints
	Seller     *Seller     `json:"seller,omitempty"`
	SizeStocks []SizeStock `json:"size_stocks,omitempty"`
}

// OwnerID resolves the seller id from either the flat field or the nested record.
func (p *Product) OwnerID() string {
	if p == nil {
		return ""
	}
	if p.SellerID != "" {
		return p.SellerID
	}
	if p.Seller != nil {
		return p.Seller.ID
	}
	return ""
}

// StockFor returns the size-stock record for size, if any.
func (p *Product) StockFor(size string) (*SizeStock, bool) {
	if p == nil {
		return nil, false
	}
	for i := range p.SizeStocks {
		if p.SizeStocks[i].Size == size {
			return &p.SizeStocks[i], true
		}
	}
	return nil, false
}

// SizeStock is the available inventory for one (product, size) pair.
type SizeStock struct {
	ID        string   `json:"id"`
	ProductID string   `json:"product_id"`
	Size      string   `json:"size"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}
