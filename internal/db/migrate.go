package db

import (
	"matchoracle/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Result{},
		&models.ValidationChecks{},
		&models.RewardBalance{},
		&models.Notification{},
	)
}
