package service

import (
	"context"

	"github.com/shopspring/decimal"

	"automarket/internal/model"
)

// Contracts the services need from the data layer. The gorm repositories in
// internal/repository satisfy them; tests substitute stubs.

// Tx runs fn inside one database transaction; the repositories join it
// through the context.
type Tx interface {
	Exec(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (*model.User, error)
	GetByIDForUpdate(ctx context.Context, userID int64) (*model.User, error)
	SetBalance(ctx context.Context, userID int64, balance decimal.Decimal) error
}

type ListingStore interface {
	Get(ctx context.Context, category model.Category, id int64) (*model.Listing, error)
	UpdatePromo(ctx context.Context, category model.Category, id int64, promo model.PromoState) error
}

type LedgerStore interface {
	Create(ctx context.Context, trans *model.BalanceTransaction) error
	GetByExternalReference(ctx context.Context, externalRef string) (*model.BalanceTransaction, error)
	UpdateStatus(ctx context.Context, id int64, from, to string) error
	ListByUserID(ctx context.Context, userID int64, page, pageSize int) ([]*model.BalanceTransaction, int64, error)
}

type PricingStore interface {
	GetEntry(ctx context.Context, service model.ServiceType, role model.UserRole, category model.Category) (*model.PricingEntry, error)
	ListByRoleCategory(ctx context.Context, role model.UserRole, category model.Category) ([]*model.PricingEntry, error)
}

type OutboxStore interface {
	Create(ctx context.Context, msg *model.OutboxMessage) error
}
