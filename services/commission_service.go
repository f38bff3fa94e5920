package services

import (
	"log"
	"time"

	"github.com/piczelnft/piczel-sub002/database"
	"github.com/piczelnft/piczel-sub002/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AmortizationDays is the payout horizon of every commission schedule.
const AmortizationDays = 365

// Commission rate per sponsor level, as a fraction of the purchase price.
// Fixed business rule: 10%, 3%, 2%, 1% x3, 0.5% x4.
var levelRates = map[int]decimal.Decimal{
	1:  decimal.NewFromFloat(0.10),
	2:  decimal.NewFromFloat(0.03),
	3:  decimal.NewFromFloat(0.02),
	4:  decimal.NewFromFloat(0.01),
	5:  decimal.NewFromFloat(0.01),
	6:  decimal.NewFromFloat(0.01),
	7:  decimal.NewFromFloat(0.005),
	8:  decimal.NewFromFloat(0.005),
	9:  decimal.NewFromFloat(0.005),
	10: decimal.NewFromFloat(0.005),
}

// CommissionRate returns the fraction of the purchase price owed to the level-th ancestor.
func CommissionRate(level int) decimal.Decimal {
	rate, ok := levelRates[level]
	if !ok {
		return decimal.Zero
	}
	return rate
}

// CreateSchedulesForPurchase creates one active commission schedule per resolvable
// ancestor of the purchaser, up to ten levels. Idempotent on the purchase: if any
// schedule already exists for it, the call is a no-op returning the empty slice —
// re-creating schedules would double-pay the whole chain.
//
// A purchase by a root user (no sponsors) creates zero schedules; that is not an error.
func CreateSchedulesForPurchase(purchase *models.NftPurchase) ([]models.CommissionSchedule, error) {
	var created []models.CommissionSchedule

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		created, txErr = createSchedulesForPurchaseTx(tx, purchase)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	if len(created) > 0 {
		log.Printf("Created %d commission schedule(s) for purchase %s", len(created), purchase.ID)
	}
	return created, nil
}

// createSchedulesForPurchaseTx is the transaction-scoped core, shared with RecordPurchase
// so a purchase and its schedules can commit together.
func createSchedulesForPurchaseTx(tx *gorm.DB, purchase *models.NftPurchase) ([]models.CommissionSchedule, error) {
	if purchase == nil || purchase.Price.Sign() <= 0 {
		return nil, ErrValidation
	}

	var existing int64
	if err := tx.Model(&models.CommissionSchedule{}).
		Where("nft_purchase_id = ?", purchase.ID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		log.Printf("Commission schedules already exist for purchase %s, skipping creation", purchase.ID)
		return nil, nil
	}

	var buyer models.User
	if err := tx.Where("id = ?", purchase.UserID).First(&buyer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ancestors, err := ResolveAncestors(tx, &buyer, MaxSponsorLevels)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	interval := PaymentInterval()
	totalDays := decimal.NewFromInt(AmortizationDays)

	var created []models.CommissionSchedule
	for _, entry := range ancestors {
		rate := CommissionRate(entry.Level)
		if rate.Sign() <= 0 {
			continue
		}

		totalCommission := purchase.Price.Mul(rate)
		schedule := models.CommissionSchedule{
			NftPurchaseID:   purchase.ID,
			UserID:          purchase.UserID,
			SponsorID:       entry.Sponsor.ID,
			SponsorMemberID: entry.Sponsor.MemberID,
			Level:           entry.Level,
			TotalCommission: totalCommission,
			DailyAmount:     totalCommission.Div(totalDays),
			TotalDays:       AmortizationDays,
			DaysRemaining:   AmortizationDays,
			RemainingAmount: totalCommission,
			TotalPaid:       decimal.Zero,
			Status:          models.ScheduleStatusActive,
			NextPaymentDate: now.Add(interval),
			StartDate:       now,
			EndDate:         now.AddDate(0, 0, AmortizationDays),
		}

		if err := tx.Create(&schedule).Error; err != nil {
			return nil, err
		}
		created = append(created, schedule)
	}

	return created, nil
}

// CancelSchedule force-cancels an active schedule. Accrual does not stop automatically
// when a sponsor is deactivated; this is the explicit administrative path for it.
func CancelSchedule(scheduleID string) (*models.CommissionSchedule, error) {
	var schedule models.CommissionSchedule
	if err := database.DB.Where("id = ?", scheduleID).First(&schedule).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if schedule.Status != models.ScheduleStatusActive {
		return nil, ErrValidation
	}

	result := database.DB.Model(&models.CommissionSchedule{}).
		Where("id = ? AND status = ?", schedule.ID, models.ScheduleStatusActive).
		Update("status", models.ScheduleStatusCancelled)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrConflict
	}

	schedule.Status = models.ScheduleStatusCancelled
	log.Printf("Commission schedule %s cancelled (sponsor %s, level %d)", schedule.ID, schedule.SponsorMemberID, schedule.Level)
	return &schedule, nil
}
