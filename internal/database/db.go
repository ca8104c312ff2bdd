package database

import (
	"backend/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		log.Warn().Err(err).Msg("failed to auto-migrate models")
	}

	return db, nil
}

// Migrate applies the schema and data migrations. Exposed separately
// so tests can run it against their own database.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Transaction{},
		&model.FixedCost{},
		&model.RecurringService{},
		&model.ExchangeRate{},
		&model.AuditLog{},
	)
	if err != nil {
		return err
	}

	// Legacy data sets carried a BORRADOR status; fold it back into PENDING.
	return db.Model(&model.Transaction{}).
		Where("approval_status = ?", model.StatusLegacyDraft).
		Update("approval_status", model.StatusPending).Error
}
