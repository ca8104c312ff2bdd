package database

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	return db
}

// The schema must migrate and accept inserts on engines without a
// server-side uuid generator; IDs come from the BeforeCreate hooks.
func TestMigrateAppliesSchemaOnSQLite(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	user := model.User{
		Username: "migration-check",
		Email:    "migration-check@test.com",
		Password: "hashed",
		Role:     model.RoleSales,
	}
	require.NoError(t, db.Create(&user).Error)
	assert.NotEqual(t, uuid.Nil, user.ID)

	txn := model.Transaction{
		ClientName:     "ACME Corp",
		OrderID:        "ORD-MIG-001",
		ExchangeRate:   decimal.NewFromInt(1),
		ApprovalStatus: model.StatusPending,
		SubmissionDate: time.Now(),
		FixedCosts:     []model.FixedCost{{Category: "installation"}},
	}
	require.NoError(t, db.Create(&txn).Error)
	assert.NotEqual(t, uuid.Nil, txn.ID)
	require.Len(t, txn.FixedCosts, 1)
	assert.NotEqual(t, uuid.Nil, txn.FixedCosts[0].ID)
}

func TestMigrateFoldsLegacyDraftStatus(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	txn := model.Transaction{
		ClientName:     "Legacy Import",
		OrderID:        "ORD-MIG-002",
		ExchangeRate:   decimal.NewFromInt(1),
		ApprovalStatus: model.StatusLegacyDraft,
		SubmissionDate: time.Now(),
	}
	require.NoError(t, db.Create(&txn).Error)

	// Running the migration again reverts the legacy status
	require.NoError(t, Migrate(db))

	var reloaded model.Transaction
	require.NoError(t, db.First(&reloaded, "id = ?", txn.ID).Error)
	assert.Equal(t, model.StatusPending, reloaded.ApprovalStatus)
}
