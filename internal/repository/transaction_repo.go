package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"automarket/internal/model"
)

var ErrInvalidStatusTransition = errors.New("invalid transaction status transition")

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, trans *model.BalanceTransaction) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(trans).Error
}

// GetByExternalReference finds the ledger row correlated with a gateway order
// or a client idempotency key. Returns (nil, nil) when none exists.
func (r *TransactionRepository) GetByExternalReference(ctx context.Context, externalRef string) (*model.BalanceTransaction, error) {
	var trans model.BalanceTransaction
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("external_reference = ?", externalRef).
		First(&trans).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trans, nil
}

// UpdateStatus moves a row from one status to another, guarding against
// concurrent callbacks racing the same transition.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id int64, from, to string) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).
		Model(&model.BalanceTransaction{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvalidStatusTransition
	}
	return nil
}

func (r *TransactionRepository) ListByUserID(ctx context.Context, userID int64, page, pageSize int) ([]*model.BalanceTransaction, int64, error) {
	var transactions []*model.BalanceTransaction
	var total int64

	query := dbFrom(ctx, r.db).WithContext(ctx).
		Model(&model.BalanceTransaction{}).
		Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&transactions).Error

	return transactions, total, err
}

// SumCompletedByUserID recomputes the balance from the ledger, the
// reconciliation counterpart of the cached users.balance column.
func (r *TransactionRepository) SumCompletedByUserID(ctx context.Context, userID int64) (string, error) {
	var sum *string
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Model(&model.BalanceTransaction{}).
		Where("user_id = ? AND status = ?", userID, model.TransactionStatusCompleted).
		Select("CAST(COALESCE(SUM(amount), 0) AS CHAR)").
		Scan(&sum).Error
	if err != nil {
		return "0", err
	}
	if sum == nil {
		return "0", nil
	}
	return *sum, nil
}
