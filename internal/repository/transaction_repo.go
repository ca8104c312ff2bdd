package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionRepository defines data access for transactions and their line items.
type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	List(ctx context.Context, status string, page, perPage int) ([]model.Transaction, int64, error)
	Update(ctx context.Context, txn *model.Transaction) error
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, txn *model.Transaction) error {
	// Children are created through the association in the same insert batch
	return GetDB(ctx, r.db).Create(txn).Error
}

func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var txn model.Transaction
	if err := GetDB(ctx, r.db).
		Preload("FixedCosts").
		Preload("RecurringServices").
		Preload("Approver").
		First(&txn, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// FindByIDForUpdate locks the row for the duration of the surrounding
// transaction so the PENDING guard cannot race a concurrent writer.
// sqlite has no row locks; its writes are serialized anyway.
func (r *transactionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	db := GetDB(ctx, r.db)
	if r.db.Dialector.Name() == "postgres" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var txn model.Transaction
	if err := db.First(&txn, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepository) List(ctx context.Context, status string, page, perPage int) ([]model.Transaction, int64, error) {
	var transactions []model.Transaction
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Transaction{})
	if status != "" {
		query = query.Where("approval_status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	fetchQuery := db.Preload("FixedCosts").Preload("RecurringServices")
	if status != "" {
		fetchQuery = fetchQuery.Where("approval_status = ?", status)
	}
	if err := fetchQuery.
		Order("submission_date DESC").
		Offset(offset).
		Limit(perPage).
		Find(&transactions).Error; err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

func (r *transactionRepository) Update(ctx context.Context, txn *model.Transaction) error {
	return GetDB(ctx, r.db).Save(txn).Error
}
