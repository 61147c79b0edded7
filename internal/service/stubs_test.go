package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"automarket/internal/config"
	"automarket/internal/model"
	"automarket/internal/repository"
)

// memDB backs the service tests with an in-memory data layer that mimics the
// transactional behavior of the real repositories: GetByIDForUpdate takes a
// per-user lock held until the enclosing memTx.Exec returns, like FOR UPDATE
// does, and every mutation inside a transaction records an undo so an error
// rolls back exactly that transaction's writes.
type memDB struct {
	mu           sync.Mutex
	users        map[int64]*model.User
	userLocks    map[int64]*sync.Mutex
	listings     map[string]*model.Listing
	transactions []*model.BalanceTransaction
	outbox       []*model.OutboxMessage
	nextTransID  int64

	failPromoUpdate  bool
	failLedgerCreate bool
}

func newMemDB() *memDB {
	return &memDB{
		users:       make(map[int64]*model.User),
		userLocks:   make(map[int64]*sync.Mutex),
		listings:    make(map[string]*model.Listing),
		nextTransID: 1,
	}
}

func listingKey(category model.Category, id int64) string {
	return fmt.Sprintf("%s:%d", category, id)
}

func (d *memDB) addUser(id int64, role model.UserRole, balance string) {
	b, _ := decimal.NewFromString(balance)
	d.users[id] = &model.User{ID: id, Role: role, Balance: b}
}

func (d *memDB) addListing(category model.Category, id, sellerID int64, promo model.PromoState) {
	d.listings[listingKey(category, id)] = &model.Listing{
		ID: id, SellerID: sellerID, Category: category, Promo: promo,
	}
}

// txState accumulates a transaction's undo log and row locks.
type txState struct {
	undo  []func()
	locks []*sync.Mutex
}

type txStateKey struct{}

func txStateFrom(ctx context.Context) *txState {
	st, _ := ctx.Value(txStateKey{}).(*txState)
	return st
}

// recordUndo registers a rollback step when running inside a transaction.
// The step runs under d.mu, so it must mutate state directly.
func (d *memDB) recordUndo(ctx context.Context, fn func()) {
	if st := txStateFrom(ctx); st != nil {
		st.undo = append(st.undo, fn)
	}
}

// memTx rolls its own writes back when the callback fails and releases the
// row locks the callback acquired.
type memTx struct {
	db *memDB
}

func (t *memTx) Exec(ctx context.Context, fn func(ctx context.Context) error) error {
	st := &txState{}
	err := fn(context.WithValue(ctx, txStateKey{}, st))
	if err != nil {
		t.db.mu.Lock()
		for i := len(st.undo) - 1; i >= 0; i-- {
			st.undo[i]()
		}
		t.db.mu.Unlock()
	}
	for _, l := range st.locks {
		l.Unlock()
	}
	return err
}

// UserStore

func (d *memDB) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (d *memDB) GetByIDForUpdate(ctx context.Context, userID int64) (*model.User, error) {
	if st := txStateFrom(ctx); st != nil {
		d.mu.Lock()
		l, ok := d.userLocks[userID]
		if !ok {
			l = &sync.Mutex{}
			d.userLocks[userID] = l
		}
		d.mu.Unlock()

		l.Lock()
		st.locks = append(st.locks, l)
	}
	return d.GetByID(ctx, userID)
}

func (d *memDB) SetBalance(ctx context.Context, userID int64, balance decimal.Decimal) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	prev := u.Balance
	d.recordUndo(ctx, func() { u.Balance = prev })
	u.Balance = balance
	return nil
}

// ListingStore

func (d *memDB) Get(ctx context.Context, category model.Category, id int64) (*model.Listing, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.listings[listingKey(category, id)]
	if !ok {
		return nil, repository.ErrListingNotFound
	}
	c := *l
	return &c, nil
}

func (d *memDB) UpdatePromo(ctx context.Context, category model.Category, id int64, promo model.PromoState) error {
	if d.failPromoUpdate {
		return fmt.Errorf("simulated promo write failure")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.listings[listingKey(category, id)]
	if !ok {
		return repository.ErrListingNotFound
	}
	prev := l.Promo
	d.recordUndo(ctx, func() { l.Promo = prev })
	l.Promo = promo
	return nil
}

// LedgerStore

func (d *memDB) Create(ctx context.Context, trans *model.BalanceTransaction) error {
	if d.failLedgerCreate {
		return fmt.Errorf("simulated ledger write failure")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	trans.ID = d.nextTransID
	d.nextTransID++
	c := *trans
	d.transactions = append(d.transactions, &c)
	d.recordUndo(ctx, func() { d.transactions = removeTransByID(d.transactions, c.ID) })
	return nil
}

func removeTransByID(list []*model.BalanceTransaction, id int64) []*model.BalanceTransaction {
	out := list[:0]
	for _, t := range list {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func (d *memDB) GetByExternalReference(ctx context.Context, externalRef string) (*model.BalanceTransaction, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range d.transactions {
		if t.ExternalReference != nil && *t.ExternalReference == externalRef {
			c := *t
			return &c, nil
		}
	}
	return nil, nil
}

func (d *memDB) UpdateStatus(ctx context.Context, id int64, from, to string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range d.transactions {
		if t.ID == id && t.Status == from {
			trans := t
			d.recordUndo(ctx, func() { trans.Status = from })
			t.Status = to
			return nil
		}
	}
	return repository.ErrInvalidStatusTransition
}

func (d *memDB) ListByUserID(ctx context.Context, userID int64, page, pageSize int) ([]*model.BalanceTransaction, int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*model.BalanceTransaction
	for _, t := range d.transactions {
		if t.UserID == userID {
			c := *t
			out = append(out, &c)
		}
	}
	return out, int64(len(out)), nil
}

// OutboxStore

func (d *memDB) CreateOutbox(ctx context.Context, msg *model.OutboxMessage) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := *msg
	d.outbox = append(d.outbox, &c)
	d.recordUndo(ctx, func() { d.outbox = d.outbox[:len(d.outbox)-1] })
	return nil
}

// outboxAdapter separates the outbox Create from the ledger Create, both of
// which memDB implements.
type outboxAdapter struct {
	db *memDB
}

func (a *outboxAdapter) Create(ctx context.Context, msg *model.OutboxMessage) error {
	return a.db.CreateOutbox(ctx, msg)
}

// fixedPricing is a PriceResolver stub with one per-day price per service.
type fixedPricing struct {
	perDay map[model.ServiceType]string
}

func (p *fixedPricing) Resolve(ctx context.Context, service model.ServiceType, role model.UserRole, category model.Category) decimal.Decimal {
	s, ok := p.perDay[service]
	if !ok {
		return decimal.Zero
	}
	d, _ := decimal.NewFromString(s)
	return d
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Kafka.Topic.PromotionPurchased = "promotion.purchased"
	cfg.Kafka.Topic.BalanceDeposited = "balance.deposited"
	cfg.Gateways.Flitt.CheckoutBaseURL = "https://pay.flitt.test/checkout"
	cfg.Gateways.BOG.CheckoutBaseURL = "https://ipay.test/checkout"
	cfg.Business.MinDepositAmount = "1"
	return cfg
}

func newPurchaseFixture(db *memDB, prices map[model.ServiceType]string) (*PurchaseService, *BalanceService) {
	cfg := testConfig()
	tx := &memTx{db: db}
	outbox := &outboxAdapter{db: db}
	balance := NewBalanceService(tx, db, db, outbox, nil, cfg)
	purchase := NewPurchaseService(tx, db, db, db, balance, &fixedPricing{perDay: prices}, outbox, cfg)
	return purchase, balance
}

func fixedNow() time.Time {
	return time.Date(2024, 5, 14, 15, 4, 5, 0, time.UTC)
}

func decimalFromString(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}
