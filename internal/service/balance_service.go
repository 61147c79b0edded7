package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"automarket/internal/config"
	"automarket/internal/infrastructure/lock"
	"automarket/internal/model"
	"automarket/pkg/idgen"
)

const (
	ProviderFlitt = "flitt"
	ProviderBOG   = "bog"
)

// BalanceService owns every balance mutation. Debit and Credit are the only
// two paths that touch users.balance, and each pairs the mutation with one
// ledger row inside the same transaction.
type BalanceService struct {
	tx     Tx
	users  UserStore
	ledger LedgerStore
	outbox OutboxStore
	rdb    *redis.Client // nil disables the callback lock
	cfg    *config.Config
}

func NewBalanceService(tx Tx, users UserStore, ledger LedgerStore, outbox OutboxStore, rdb *redis.Client, cfg *config.Config) *BalanceService {
	return &BalanceService{
		tx:     tx,
		users:  users,
		ledger: ledger,
		outbox: outbox,
		rdb:    rdb,
		cfg:    cfg,
	}
}

func (s *BalanceService) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return user.Balance, nil
}

func (s *BalanceService) ListTransactions(ctx context.Context, userID int64, page, pageSize int) ([]*model.BalanceTransaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.ledger.ListByUserID(ctx, userID, page, pageSize)
}

// DepositIntent is the answer to a deposit initiation: where to send the user
// and which order id the gateway callback will reference.
type DepositIntent struct {
	OrderID       string          `json:"order_id"`
	TransactionNo string          `json:"transaction_no"`
	Amount        decimal.Decimal `json:"amount"`
	RedirectURL   string          `json:"redirect_url"`
}

// InitiateDeposit records a pending ledger row for an online top-up and
// returns the gateway checkout URL. The row stays pending until the gateway
// confirms or declines via callback.
func (s *BalanceService) InitiateDeposit(ctx context.Context, userID int64, amount decimal.Decimal, provider string) (*DepositIntent, error) {
	base, err := s.checkoutBase(provider)
	if err != nil {
		return nil, err
	}
	if min := s.cfg.Business.MinDeposit(); amount.LessThan(min) || !amount.IsPositive() {
		return nil, validationf("deposit amount must be at least %s", min)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	orderID := uuid.New().String()
	trans := &model.BalanceTransaction{
		TransactionNo:     idgen.GenerateDepositNo(),
		UserID:            userID,
		Amount:            amount,
		TransactionType:   model.TransactionTypeDeposit,
		Description:       fmt.Sprintf("online deposit via %s, amount %s", provider, amount),
		Status:            model.TransactionStatusPending,
		ExternalReference: &orderID,
	}
	if err := s.ledger.Create(ctx, trans); err != nil {
		return nil, fmt.Errorf("create deposit transaction: %w", err)
	}

	return &DepositIntent{
		OrderID:       orderID,
		TransactionNo: trans.TransactionNo,
		Amount:        amount,
		RedirectURL:   fmt.Sprintf("%s/%s", base, orderID),
	}, nil
}

// Credit finalizes a gateway-driven deposit. Idempotent on externalRef: a
// callback for an already-completed transaction is a no-op, never a double
// credit. Unknown references are logged and ignored, the gateway still gets
// its 200 from the handler.
func (s *BalanceService) Credit(ctx context.Context, provider, externalRef string, reportedAmount decimal.Decimal, succeeded bool) error {
	if s.rdb != nil {
		callbackLock := lock.NewCallbackLock(s.rdb, provider, externalRef)
		if err := callbackLock.Lock(ctx, 100*time.Millisecond, 30); err != nil {
			return fmt.Errorf("acquire callback lock: %w", err)
		}
		defer callbackLock.Unlock(ctx)
	}

	return s.tx.Exec(ctx, func(ctx context.Context) error {
		trans, err := s.ledger.GetByExternalReference(ctx, externalRef)
		if err != nil {
			return fmt.Errorf("lookup deposit by reference: %w", err)
		}
		if trans == nil {
			logrus.WithFields(logrus.Fields{
				"provider":  provider,
				"reference": externalRef,
			}).Warn("gateway callback for unknown reference, ignoring")
			return nil
		}
		if trans.Status != model.TransactionStatusPending {
			// replayed callback, already settled
			return nil
		}

		if !succeeded {
			return s.ledger.UpdateStatus(ctx, trans.ID, model.TransactionStatusPending, model.TransactionStatusFailed)
		}

		if !reportedAmount.IsZero() && !reportedAmount.Equal(trans.Amount) {
			logrus.WithFields(logrus.Fields{
				"provider":  provider,
				"reference": externalRef,
				"expected":  trans.Amount,
				"reported":  reportedAmount,
			}).Warn("gateway reported amount differs from initiated amount, crediting initiated amount")
		}

		user, err := s.users.GetByIDForUpdate(ctx, trans.UserID)
		if err != nil {
			return fmt.Errorf("lock user balance: %w", err)
		}
		newBalance := user.Balance.Add(trans.Amount)
		if err := s.users.SetBalance(ctx, user.ID, newBalance); err != nil {
			return fmt.Errorf("credit balance: %w", err)
		}
		if err := s.ledger.UpdateStatus(ctx, trans.ID, model.TransactionStatusPending, model.TransactionStatusCompleted); err != nil {
			return fmt.Errorf("complete deposit transaction: %w", err)
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"user_id":        user.ID,
			"amount":         trans.Amount,
			"provider":       provider,
			"reference":      externalRef,
			"transaction_no": trans.TransactionNo,
			"new_balance":    newBalance,
		})
		return s.outbox.Create(ctx, &model.OutboxMessage{
			MessageKey: trans.TransactionNo,
			Topic:      s.cfg.Kafka.Topic.BalanceDeposited,
			Payload:    string(payload),
			Status:     model.OutboxStatusPending,
		})
	})
}

// DebitResult reports a completed debit.
type DebitResult struct {
	Transaction *model.BalanceTransaction
	NewBalance  decimal.Decimal
}

// Debit charges amount from the user's balance and appends the matching
// ledger row. Must run inside an enclosing Tx.Exec: it locks the user row FOR
// UPDATE and relies on the caller's transaction for atomicity with whatever
// the charge paid for. Rejects instead of ever letting the balance go
// negative.
func (s *BalanceService) Debit(ctx context.Context, userID int64, amount decimal.Decimal, txnType, description string, referenceID *int64, externalRef *string) (*DebitResult, error) {
	if amount.IsNegative() {
		return nil, validationf("debit amount must not be negative")
	}

	user, err := s.users.GetByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Balance.LessThan(amount) {
		return nil, &InsufficientFundsError{Required: amount, Current: user.Balance}
	}

	newBalance := user.Balance.Sub(amount)
	if !newBalance.Equal(user.Balance) {
		if err := s.users.SetBalance(ctx, userID, newBalance); err != nil {
			return nil, fmt.Errorf("debit balance: %w", err)
		}
	}

	trans := &model.BalanceTransaction{
		TransactionNo:     idgen.GenerateTransactionNo(),
		UserID:            userID,
		Amount:            amount.Neg(),
		TransactionType:   txnType,
		Description:       description,
		Status:            model.TransactionStatusCompleted,
		ExternalReference: externalRef,
		ReferenceID:       referenceID,
		BalanceBefore:     user.Balance,
		BalanceAfter:      newBalance,
	}
	if err := s.ledger.Create(ctx, trans); err != nil {
		return nil, fmt.Errorf("create ledger entry: %w", err)
	}

	return &DebitResult{Transaction: trans, NewBalance: newBalance}, nil
}

func (s *BalanceService) checkoutBase(provider string) (string, error) {
	switch provider {
	case ProviderFlitt:
		return s.cfg.Gateways.Flitt.CheckoutBaseURL, nil
	case ProviderBOG:
		return s.cfg.Gateways.BOG.CheckoutBaseURL, nil
	}
	return "", validationf("unknown payment provider %q", provider)
}
