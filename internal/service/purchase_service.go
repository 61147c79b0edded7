package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"automarket/internal/config"
	"automarket/internal/expiry"
	"automarket/internal/model"
)

// Debiter is the single sanctioned way the orchestrator takes money.
type Debiter interface {
	Debit(ctx context.Context, userID int64, amount decimal.Decimal, txnType, description string, referenceID *int64, externalRef *string) (*DebitResult, error)
}

// PriceResolver resolves a per-day price; never fails (fallback table).
type PriceResolver interface {
	Resolve(ctx context.Context, service model.ServiceType, role model.UserRole, category model.Category) decimal.Decimal
}

// PurchaseService is the transactional VIP purchase protocol, one generic
// routine for both cars and parts. Price resolution, balance debit,
// promotional-state write, ledger entry and outbox event all run
// inside one database transaction with the buyer's balance row locked, so
// concurrent purchases against one balance serialize and a failure at any
// step leaves no partial state behind.
type PurchaseService struct {
	tx       Tx
	users    UserStore
	listings ListingStore
	ledger   LedgerStore
	balance  Debiter
	pricing  PriceResolver
	outbox   OutboxStore
	cfg      *config.Config
	now      func() time.Time
}

func NewPurchaseService(tx Tx, users UserStore, listings ListingStore, ledger LedgerStore, balance Debiter, pricing PriceResolver, outbox OutboxStore, cfg *config.Config) *PurchaseService {
	return &PurchaseService{
		tx:       tx,
		users:    users,
		listings: listings,
		ledger:   ledger,
		balance:  balance,
		pricing:  pricing,
		outbox:   outbox,
		cfg:      cfg,
		now:      time.Now,
	}
}

// PurchaseResult is what a successful (or replayed) purchase reports back.
type PurchaseResult struct {
	Success        bool            `json:"success"`
	NewBalance     decimal.Decimal `json:"new_balance"`
	VipStatus      model.VipStatus `json:"vip_status"`
	VipExpiration  *time.Time      `json:"vip_expiration,omitempty"`
	DaysRequested  int             `json:"days_requested"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	DeductedAmount decimal.Decimal `json:"deducted_amount"`
	Replayed       bool            `json:"replayed,omitempty"`
}

// line is one priced component of a purchase.
type line struct {
	service model.ServiceType
	days    int
	perDay  decimal.Decimal
	cost    decimal.Decimal
}

// Purchase runs the full protocol for one listing. Repeat purchases are
// allowed for both categories and act as renewals: the new expiration is
// computed from the purchase instant and overwrites the old one.
func (s *PurchaseService) Purchase(ctx context.Context, category model.Category, listingID, buyerID int64, req *model.PurchaseRequest) (*PurchaseResult, error) {
	if !model.ValidCategory(category) {
		return nil, validationf("invalid category %q", category)
	}
	if !model.ValidVipStatus(req.VipStatus) {
		return nil, validationf("invalid vip status %q", req.VipStatus)
	}
	if req.VipStatus != model.VipStatusNone && req.Days <= 0 {
		return nil, validationf("days is required and must be positive for vip status %q", req.VipStatus)
	}
	if req.VipStatus == model.VipStatusNone && !bool(req.ColorHighlighting) && !bool(req.AutoRenewal) {
		return nil, ErrNothingSelected
	}

	if req.RequestID != "" {
		replay, err := s.replayIfSettled(ctx, category, listingID, buyerID, req.RequestID)
		if err != nil {
			return nil, err
		}
		if replay != nil {
			return replay, nil
		}
	}

	var result *PurchaseResult
	err := s.tx.Exec(ctx, func(ctx context.Context) error {
		listing, err := s.listings.Get(ctx, category, listingID)
		if err != nil {
			return err
		}
		if listing.SellerID != buyerID {
			return ErrNotOwner
		}

		buyer, err := s.users.GetByID(ctx, buyerID)
		if err != nil {
			return err
		}

		now := s.now()
		lines, packageDays := s.priceLines(ctx, req, buyer.Role, category)

		total := decimal.Zero
		for _, l := range lines {
			total = total.Add(l.cost)
		}

		var externalRef *string
		if req.RequestID != "" {
			externalRef = &req.RequestID
		}
		debit, err := s.balance.Debit(ctx, buyerID, total,
			model.PurchaseTransactionType(category),
			composeDescription(lines, total),
			&listingID, externalRef)
		if err != nil {
			return err
		}

		promo := listing.Promo
		applyLines(&promo, req.VipStatus, lines, now)

		if err := s.listings.UpdatePromo(ctx, category, listingID, promo); err != nil {
			return fmt.Errorf("update promotional state: %w", err)
		}

		if err := s.publishPurchased(ctx, category, listingID, buyerID, &promo, debit); err != nil {
			return err
		}

		result = &PurchaseResult{
			Success:        true,
			NewBalance:     debit.NewBalance,
			VipStatus:      promo.VipStatus,
			VipExpiration:  promo.VipExpirationDate,
			DaysRequested:  packageDays,
			TotalPrice:     total,
			DeductedAmount: total,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"category":   category,
		"listing_id": listingID,
		"buyer_id":   buyerID,
		"vip_status": result.VipStatus,
		"total":      result.TotalPrice,
	}).Info("vip purchase completed")

	return result, nil
}

// priceLines resolves every requested service into a priced line. An add-on
// with no day count of its own borrows the package day count, defaulting to a
// single day on an add-on-only purchase.
func (s *PurchaseService) priceLines(ctx context.Context, req *model.PurchaseRequest, role model.UserRole, category model.Category) ([]line, int) {
	var lines []line
	packageDays := 0

	if req.VipStatus != model.VipStatusNone {
		packageDays = req.Days.Normalized()
		perDay := s.pricing.Resolve(ctx, model.ServiceType(req.VipStatus), role, category)
		lines = append(lines, line{
			service: model.ServiceType(req.VipStatus),
			days:    packageDays,
			perDay:  perDay,
			cost:    perDay.Mul(decimal.NewFromInt(int64(packageDays))),
		})
	}

	addOnDays := func(own model.FlexDays) int {
		if own > 0 {
			return own.Normalized()
		}
		if packageDays > 0 {
			return packageDays
		}
		return 1
	}

	if bool(req.ColorHighlighting) {
		days := addOnDays(req.ColorHighlightingDays)
		perDay := s.pricing.Resolve(ctx, model.ServiceTypeColorHighlighting, role, category)
		lines = append(lines, line{
			service: model.ServiceTypeColorHighlighting,
			days:    days,
			perDay:  perDay,
			cost:    perDay.Mul(decimal.NewFromInt(int64(days))),
		})
	}

	if bool(req.AutoRenewal) {
		days := addOnDays(req.AutoRenewalDays)
		perDay := s.pricing.Resolve(ctx, model.ServiceTypeAutoRenewal, role, category)
		lines = append(lines, line{
			service: model.ServiceTypeAutoRenewal,
			days:    days,
			perDay:  perDay,
			cost:    perDay.Mul(decimal.NewFromInt(int64(days))),
		})
	}

	return lines, packageDays
}

// applyLines writes the purchased services onto the promotional state. A
// vip_status of none leaves the package fields untouched rather than
// resetting them.
func applyLines(promo *model.PromoState, vip model.VipStatus, lines []line, now time.Time) {
	for _, l := range lines {
		expiration := expiry.EndOfDayAfter(now, l.days)

		switch l.service {
		case model.ServiceTypeColorHighlighting:
			promo.ColorHighlightingEnabled = true
			promo.ColorHighlightingExpirationDate = &expiration
			promo.ColorHighlightingTotalDays = l.days
			promo.ColorHighlightingRemainingDays = l.days
		case model.ServiceTypeAutoRenewal:
			promo.AutoRenewalEnabled = true
			promo.AutoRenewalExpirationDate = &expiration
			promo.AutoRenewalDays = l.days
			promo.AutoRenewalTotalDays = l.days
			promo.AutoRenewalRemainingDays = l.days
		default:
			promo.VipStatus = vip
			promo.VipExpirationDate = &expiration
			promo.VipActive = true
		}
	}
}

// replayIfSettled answers a retried purchase from the existing ledger entry
// instead of charging twice. The entry must belong to the same buyer, the
// same listing and the same kind of purchase; a request_id settled for any
// other operation is a conflict, not a replay.
func (s *PurchaseService) replayIfSettled(ctx context.Context, category model.Category, listingID, buyerID int64, requestID string) (*PurchaseResult, error) {
	existing, err := s.ledger.GetByExternalReference(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("lookup idempotency key: %w", err)
	}
	if existing == nil || existing.Status != model.TransactionStatusCompleted {
		return nil, nil
	}
	if existing.UserID != buyerID ||
		existing.TransactionType != model.PurchaseTransactionType(category) ||
		existing.ReferenceID == nil || *existing.ReferenceID != listingID {
		return nil, &DuplicateRequestError{RequestID: requestID}
	}

	listing, err := s.listings.Get(ctx, category, listingID)
	if err != nil {
		return nil, err
	}
	buyer, err := s.users.GetByID(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	total := existing.Amount.Neg()
	return &PurchaseResult{
		Success:        true,
		NewBalance:     buyer.Balance,
		VipStatus:      listing.Promo.VipStatus,
		VipExpiration:  listing.Promo.VipExpirationDate,
		TotalPrice:     total,
		DeductedAmount: total,
		Replayed:       true,
	}, nil
}

func (s *PurchaseService) publishPurchased(ctx context.Context, category model.Category, listingID, buyerID int64, promo *model.PromoState, debit *DebitResult) error {
	payload, _ := json.Marshal(map[string]interface{}{
		"category":       category,
		"listing_id":     listingID,
		"buyer_id":       buyerID,
		"vip_status":     promo.VipStatus,
		"vip_expiration": promo.VipExpirationDate,
		"amount":         debit.Transaction.Amount,
		"transaction_no": debit.Transaction.TransactionNo,
	})
	return s.outbox.Create(ctx, &model.OutboxMessage{
		MessageKey: debit.Transaction.TransactionNo,
		Topic:      s.cfg.Kafka.Topic.PromotionPurchased,
		Payload:    string(payload),
		Status:     model.OutboxStatusPending,
	})
}

// composeDescription builds the human-readable ledger breakdown, e.g.
// "vip: 3 days x 2.00 = 6.00; color_highlighting: 2 days x 0.50 = 1.00; total 7.00".
func composeDescription(lines []line, total decimal.Decimal) string {
	parts := make([]string, 0, len(lines)+1)
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%s: %d days x %s = %s",
			l.service, l.days, l.perDay.StringFixed(2), l.cost.StringFixed(2)))
	}
	parts = append(parts, fmt.Sprintf("total %s", total.StringFixed(2)))
	return strings.Join(parts, "; ")
}
