package job

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"automarket/internal/config"
	"automarket/internal/model"
	"automarket/internal/repository"
)

// PromotionMaintenanceJob runs once a day: it decrements the remaining-days
// counters of the counter-based add-ons (color highlighting, auto-renewal),
// switches the flags off once a counter is exhausted or the expiration
// date has passed, and reconciles every cached balance against the ledger.
//
// VIP expiry itself stays passive on purpose: the stored vip_status column
// is never flipped here, readers derive the effective tier from the
// expiration date.
type PromotionMaintenanceJob struct {
	listingRepo *repository.ListingRepository
	userRepo    *repository.UserRepository
	transRepo   *repository.TransactionRepository
	cron        *cron.Cron
	schedule    string
}

func NewPromotionMaintenanceJob(db *gorm.DB, cfg *config.Config) *PromotionMaintenanceJob {
	return &PromotionMaintenanceJob{
		listingRepo: repository.NewListingRepository(db),
		userRepo:    repository.NewUserRepository(db),
		transRepo:   repository.NewTransactionRepository(db),
		cron:        cron.New(),
		schedule:    cfg.Business.MaintenanceCron,
	}
}

// Start registers the schedule and runs the cron loop until ctx is cancelled.
func (j *PromotionMaintenanceJob) Start(ctx context.Context) {
	_, err := j.cron.AddFunc(j.schedule, func() {
		j.runOnce(ctx)
	})
	if err != nil {
		logrus.Fatalf("[PromotionMaintenance] invalid cron schedule %q: %v", j.schedule, err)
	}

	j.cron.Start()
	logrus.Infof("[PromotionMaintenance] scheduled with %q", j.schedule)

	<-ctx.Done()
	stopCtx := j.cron.Stop()
	<-stopCtx.Done()
	logrus.Info("[PromotionMaintenance] stopped")
}

func (j *PromotionMaintenanceJob) runOnce(ctx context.Context) {
	now := time.Now()

	for _, category := range []model.Category{model.CategoryCars, model.CategoryParts} {
		for _, addOn := range []model.ServiceType{model.ServiceTypeColorHighlighting, model.ServiceTypeAutoRenewal} {
			decremented, err := j.listingRepo.DecrementRemainingDays(ctx, category, addOn)
			if err != nil {
				logrus.Errorf("[PromotionMaintenance] decrement failed: category=%s addon=%s err=%v", category, addOn, err)
				continue
			}

			disabled, err := j.listingRepo.DisableExhaustedAddOn(ctx, category, addOn, now)
			if err != nil {
				logrus.Errorf("[PromotionMaintenance] disable failed: category=%s addon=%s err=%v", category, addOn, err)
				continue
			}

			if decremented > 0 || disabled > 0 {
				logrus.Infof("[PromotionMaintenance] category=%s addon=%s decremented=%d disabled=%d",
					category, addOn, decremented, disabled)
			}
		}
	}

	j.reconcileBalances(ctx)
}

// reconcileBalances checks the cached users.balance column against the sum of
// completed ledger amounts. A mismatch means a balance mutation escaped its
// ledger entry; it is logged loudly but never auto-corrected.
func (j *PromotionMaintenanceJob) reconcileBalances(ctx context.Context) {
	users, err := j.userRepo.ListAll(ctx)
	if err != nil {
		logrus.Errorf("[PromotionMaintenance] reconciliation list failed: %v", err)
		return
	}

	mismatches := 0
	for _, u := range users {
		sumStr, err := j.transRepo.SumCompletedByUserID(ctx, u.ID)
		if err != nil {
			logrus.Errorf("[PromotionMaintenance] ledger sum failed: user=%d err=%v", u.ID, err)
			continue
		}
		sum, err := decimal.NewFromString(sumStr)
		if err != nil {
			logrus.Errorf("[PromotionMaintenance] unparseable ledger sum: user=%d sum=%q", u.ID, sumStr)
			continue
		}
		if !sum.Equal(u.Balance) {
			mismatches++
			logrus.Errorf("[PromotionMaintenance] balance mismatch: user=%d cached=%s ledger=%s",
				u.ID, u.Balance, sum)
		}
	}

	if mismatches > 0 {
		logrus.Errorf("[PromotionMaintenance] reconciliation found %d mismatched balances", mismatches)
	} else {
		logrus.Infof("[PromotionMaintenance] reconciliation clean: %d accounts", len(users))
	}
}
