package repository

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager runs a function inside one database transaction. The transaction
// handle travels in the context, so repositories join it transparently and
// services never touch *gorm.DB directly.
type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Exec starts a transaction, calls fn with a tx-carrying context and commits.
// Any error from fn rolls the whole transaction back.
func (m *TxManager) Exec(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFrom returns the transaction from ctx when inside TxManager.Exec,
// otherwise the repository's own connection.
func dbFrom(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}
