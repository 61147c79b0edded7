package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"automarket/internal/model"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrListingNotFound = errors.New("listing not found")
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	err := dbFrom(ctx, r.db).WithContext(ctx).First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByIDForUpdate locks the user row for the rest of the enclosing
// transaction. All balance read-modify-write paths go through this lock so
// concurrent purchases by the same user serialize instead of reading a stale
// balance. Must be called inside TxManager.Exec.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListAll returns every account with its cached balance. Used by the nightly
// ledger reconciliation sweep.
func (r *UserRepository) ListAll(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	err := dbFrom(ctx, r.db).WithContext(ctx).Find(&users).Error
	return users, err
}

// SetBalance writes the new cached balance. Callers hold the FOR UPDATE lock.
func (r *UserRepository) SetBalance(ctx context.Context, userID int64, balance decimal.Decimal) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Update("balance", balance)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
