package db

import (
	"github.com/ikkim/shopfront/internal/app/model"
	"github.com/ikkim/shopfront/pkg/logger"
	"gorm.io/gorm"
)

// ledgerModels are the only tables shopfront owns; everything else lives upstream.
func ledgerModels() []interface{} {
	return []interface{}{
		&model.CheckoutRecord{},
		&model.CheckoutOutcome{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	return migrate(DB)
}

func migrate(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := ledgerModels()
	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
