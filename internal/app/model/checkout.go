package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// CheckoutRecord is the local ledger row for one checkout action.
type CheckoutRecord struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	CheckoutID      string         `gorm:"size:64;uniqueIndex;not null" json:"checkout_id"`
	UserID          string         `gorm:"size:64;not null;index" json:"user_id"`
	Address         string         `gorm:"type:text;not null" json:"address"`
	Phone           string         `gorm:"size:30;not null" json:"phone"`
	PostalCode      string         `gorm:"size:20" json:"postal_code,omitempty"`
	PaymentMethod   PaymentMethod  `gorm:"type:varchar(20);not null" json:"payment_method"`
	TotalPrice      float64        `gorm:"not null" json:"total_price"`
	SellerCount     int            `gorm:"not null" json:"seller_count"`
	FailedSellerIDs pq.StringArray `gorm:"type:text" json:"failed_seller_ids"` // stored as a postgres array literal
	CheckedOutAt    time.Time      `gorm:"not null;index" json:"checked_out_at"`
	CreatedAt       time.Time      `json:"created_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Outcomes []CheckoutOutcome `gorm:"foreignKey:CheckoutRecordID;constraint:OnDelete:CASCADE" json:"outcomes,omitempty"`
}

func (CheckoutRecord) TableName() string {
	return "checkout_records"
}

// CheckoutOutcome is one seller's result within a checkout.
type CheckoutOutcome struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	CheckoutRecordID uint      `gorm:"not null;index" json:"checkout_record_id"`
	SellerID         string    `gorm:"size:64;not null;index" json:"seller_id"`
	SellerName       string    `gorm:"size:200" json:"seller_name"`
	OrderID          string    `gorm:"size:64" json:"order_id,omitempty"`
	Subtotal         float64   `gorm:"not null" json:"subtotal"`
	Succeeded        bool      `gorm:"not null" json:"succeeded"`
	Error            string    `gorm:"type:text" json:"error,omitempty"`
	CartCleared      bool      `gorm:"not null;default:false" json:"cart_cleared"`
	CreatedAt        time.Time `json:"created_at"`
}

func (CheckoutOutcome) TableName() string {
	return "checkout_outcomes"
}
