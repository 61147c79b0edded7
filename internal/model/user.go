package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User holds the account data the promotion engine cares about: role for
// pricing and the prepaid balance.
//
// Balance is a cached value; the system of record is the sum of completed
// BalanceTransaction amounts. Both are always updated inside one database
// transaction, with the user row locked FOR UPDATE for the duration.
type User struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Role      UserRole        `gorm:"type:varchar(20);not null;default:user" json:"role"`
	Balance   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
