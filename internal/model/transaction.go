package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionTypeDeposit         = "deposit"
	TransactionTypeVipPurchase     = "vip_purchase"
	TransactionTypePartVipPurchase = "part_vip_purchase"
	TransactionTypeAutoRenewalCar  = "auto_renewal_car"
	TransactionTypeAutoRenewalPart = "auto_renewal_part"
)

const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// PurchaseTransactionType maps a listing category to its ledger entry type.
func PurchaseTransactionType(c Category) string {
	if c == CategoryParts {
		return TransactionTypePartVipPurchase
	}
	return TransactionTypeVipPurchase
}

// BalanceTransaction is one entry of the append-only balance ledger, the
// system of record for every balance change. Rows are never deleted and,
// apart from pending -> completed/failed status transitions driven by gateway
// callbacks, never modified.
//
// Amount is signed: negative means money leaving the platform to pay for a
// service. BalanceBefore/BalanceAfter snapshot the cached balance around the
// mutation for reconciliation.
type BalanceTransaction struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionNo     string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_no"`
	UserID            int64           `gorm:"index;not null" json:"user_id"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	TransactionType   string          `gorm:"type:varchar(32);not null" json:"transaction_type"`
	Description       string          `gorm:"type:varchar(512)" json:"description"`
	Status            string          `gorm:"type:varchar(20);index;not null;default:pending" json:"status"`
	ExternalReference *string         `gorm:"type:varchar(128);uniqueIndex" json:"external_reference,omitempty"`
	ReferenceID       *int64          `gorm:"index" json:"reference_id,omitempty"`
	BalanceBefore     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"balance_before"`
	BalanceAfter      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"balance_after"`
	CreatedAt         time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BalanceTransaction) TableName() string {
	return "balance_transactions"
}
