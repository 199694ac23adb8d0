package repository

import (
	"time"

	"github.com/ikkim/shopfront/internal/app/model"
	"github.com/ikkim/shopfront/pkg/logger"
	"gorm.io/gorm"
)

// CheckoutRepository is the local ledger of checkout attempts.
type CheckoutRepository interface {
	Create(record *model.CheckoutRecord) error
	FindByCheckoutID(checkoutID string) (*model.CheckoutRecord, error)
	FindByUserID(userID string, limit int) ([]model.CheckoutRecord, error)
	FindBetween(from, to time.Time) ([]model.CheckoutRecord, error)
}

type checkoutRepository struct {
	db *gorm.DB
}

func NewCheckoutRepository(db *gorm.DB) CheckoutRepository {
	return &checkoutRepository{db: db}
}

func (r *checkoutRepository) withOutcomes() *gorm.DB {
	return r.db.Preload("Outcomes", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

func (r *checkoutRepository) Create(record *model.CheckoutRecord) error {
	logger.Debug("Creating checkout record in database", map[string]interface{}{
		"checkout_id":  record.CheckoutID,
		"user_id":      record.UserID,
		"seller_count": record.SellerCount,
	})

	if err := r.db.Create(record).Error; err != nil {
		logger.Error("Failed to create checkout record in database", err, map[string]interface{}{
			"checkout_id": record.CheckoutID,
			"user_id":     record.UserID,
		})
		return err
	}

	logger.Debug("Checkout record created in database", map[string]interface{}{
		"id":          record.ID,
		"checkout_id": record.CheckoutID,
	})
	return nil
}

func (r *checkoutRepository) FindByCheckoutID(checkoutID string) (*model.CheckoutRecord, error) {
	logger.Debug("Finding checkout record in database", map[string]interface{}{
		"checkout_id": checkoutID,
	})

	var record model.CheckoutRecord
	if err := r.withOutcomes().Where("checkout_id = ?", checkoutID).First(&record).Error; err != nil {
		logger.Error("Failed to find checkout record in database", err, map[string]interface{}{
			"checkout_id": checkoutID,
		})
		return nil, err
	}
	return &record, nil
}

func (r *checkoutRepository) FindByUserID(userID string, limit int) ([]model.CheckoutRecord, error) {
	logger.Debug("Finding checkout records by user ID in database", map[string]interface{}{
		"user_id": userID,
		"limit":   limit,
	})

	query := r.withOutcomes().Where("user_id = ?", userID).Order("checked_out_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []model.CheckoutRecord
	if err := query.Find(&records).Error; err != nil {
		logger.Error("Failed to find checkout records by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Checkout records found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(records),
	})
	return records, nil
}

// FindBetween returns records with from <= checked_out_at < to, oldest first.
func (r *checkoutRepository) FindBetween(from, to time.Time) ([]model.CheckoutRecord, error) {
	logger.Debug("Finding checkout records in range", map[string]interface{}{
		"from": from,
		"to":   to,
	})

	var records []model.CheckoutRecord
	if err := r.withOutcomes().
		Where("checked_out_at >= ? AND checked_out_at < ?", from, to).
		Order("checked_out_at ASC").
		Find(&records).Error; err != nil {
		logger.Error("Failed to find checkout records in range", err, map[string]interface{}{
			"from": from,
			"to":   to,
		})
		return nil, err
	}

	logger.Debug("Checkout records found in range", map[string]interface{}{
		"count": len(records),
	})
	return records, nil
}
