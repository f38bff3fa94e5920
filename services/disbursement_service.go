package services

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	config "github.com/piczelnft/piczel-sub002/configs"
	"github.com/piczelnft/piczel-sub002/database"
	"github.com/piczelnft/piczel-sub002/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DisbursementError struct {
	ScheduleID uuid.UUID `json:"schedule_id"`
	Reason     string    `json:"reason"`
}

type DisbursementSummary struct {
	Processed   []uuid.UUID         `json:"processed"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	Skipped     int                 `json:"skipped"`
	Errors      []DisbursementError `json:"errors"`
}

// ProcessDueCommissions pays one tick to every schedule that is active, due at now, and
// has days remaining. Each schedule is advanced in its own transaction guarded by a
// compare-and-set on next_payment_date, so a failure on one row never blocks the rest and
// an overlapping run can never apply the same tick twice. A row that loses the CAS race
// is counted as skipped and handled by whichever run won it.
//
// The batch is bounded both by COMMISSION_BATCH_LIMIT and by a wall-clock budget; rows
// left over stay due and are picked up by the next invocation.
func ProcessDueCommissions(now time.Time) (*DisbursementSummary, error) {
	summary := &DisbursementSummary{TotalAmount: decimal.Zero}

	batchLimit := config.Int("COMMISSION_BATCH_LIMIT", 500)
	budget := config.Duration("JOB_TIME_BUDGET", 4*time.Minute)
	started := time.Now()

	var due []models.CommissionSchedule
	err := database.DB.
		Where("status = ? AND next_payment_date <= ? AND days_remaining > 0", models.ScheduleStatusActive, now).
		Order("next_payment_date asc").
		Limit(batchLimit).
		Find(&due).Error
	if err != nil {
		return nil, err
	}

	if len(due) == 0 {
		return summary, nil
	}

	interval := PaymentInterval()
	buyers := make(map[uuid.UUID]struct{})

	for i := range due {
		if time.Since(started) > budget {
			log.Printf("Disbursement budget exhausted after %d of %d schedules, yielding the rest", i, len(due))
			break
		}

		schedule := &due[i]
		amount, err := payScheduleTick(schedule, now, interval)
		if err != nil {
			if errors.Is(err, ErrConflict) {
				summary.Skipped++
				continue
			}
			log.Printf("🔥 Error disbursing schedule %s: %v", schedule.ID, err)
			summary.Errors = append(summary.Errors, DisbursementError{ScheduleID: schedule.ID, Reason: err.Error()})
			continue
		}

		summary.Processed = append(summary.Processed, schedule.ID)
		summary.TotalAmount = summary.TotalAmount.Add(amount)
		buyers[schedule.UserID] = struct{}{}
	}

	// Every payment depletes the buyer's escrow, so reconcile each affected holding
	// wallet once per batch rather than once per tick.
	for buyerID := range buyers {
		if _, err := ReconcileHoldingWallet(buyerID); err != nil {
			log.Printf("Error reconciling holding wallet for user %s: %v", buyerID, err)
		}
	}

	if len(summary.Processed) > 0 || len(summary.Errors) > 0 {
		log.Printf("Disbursement run: %d paid (total %s), %d skipped, %d error(s)",
			len(summary.Processed), summary.TotalAmount.StringFixed(2), summary.Skipped, len(summary.Errors))
	}
	return summary, nil
}

// payScheduleTick advances one schedule by one day inside a single transaction.
// The conditional update doubles as the concurrency guard: if another run already moved
// next_payment_date past what we read, RowsAffected is zero and we back off.
func payScheduleTick(schedule *models.CommissionSchedule, now time.Time, interval time.Duration) (decimal.Decimal, error) {
	if schedule.TotalDays <= 0 || schedule.DaysRemaining < 0 {
		return decimal.Zero, ErrDataCorruption
	}

	// The final tick pays whatever is left, never more; division remainders over the
	// amortization therefore land in the last payment instead of overpaying.
	amount := schedule.DailyAmount
	if amount.GreaterThan(schedule.RemainingAmount) {
		amount = schedule.RemainingAmount
	}

	newDaysRemaining := schedule.DaysRemaining - 1
	newStatus := models.ScheduleStatusActive
	if newDaysRemaining == 0 {
		newStatus = models.ScheduleStatusCompleted
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var sponsor models.User
		if err := tx.Where("id = ?", schedule.SponsorID).First(&sponsor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		// CAS: the row must still be due and at the day count we read. A competing run's
		// tick advances both, so at most one of two overlapping runs can win this update.
		result := tx.Model(&models.CommissionSchedule{}).
			Where("id = ? AND status = ? AND next_payment_date <= ? AND days_remaining = ?",
				schedule.ID, models.ScheduleStatusActive, now, schedule.DaysRemaining).
			Updates(map[string]interface{}{
				"total_paid":        gorm.Expr("total_paid + ?", amount),
				"remaining_amount":  gorm.Expr("remaining_amount - ?", amount),
				"days_paid":         gorm.Expr("days_paid + 1"),
				"days_remaining":    newDaysRemaining,
				"status":            newStatus,
				"last_payment_date": now,
				"next_payment_date": now.Add(interval),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrConflict
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", sponsor.ID).
			Update("commission_wallet_balance", gorm.Expr("commission_wallet_balance + ?", amount)).Error; err != nil {
			return err
		}

		// The purchase records every unit that has left its escrow. payout_status flips
		// to paid on the very first tick: from that moment the reconciler must count the
		// accumulating paid_out_amount against the buyer's holding wallet.
		updates := map[string]interface{}{
			"paid_out_amount": gorm.Expr("paid_out_amount + ?", amount),
			"payout_status":   models.PayoutStatusPaid,
		}
		result = tx.Model(&models.NftPurchase{}).
			Where("id = ?", schedule.NftPurchaseID).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		return tx.Model(&models.NftPurchase{}).
			Where("id = ? AND paid_out_at IS NULL", schedule.NftPurchaseID).
			Update("paid_out_at", now).Error
	})
	if err != nil {
		return decimal.Zero, err
	}

	schedule.DaysPaid++
	schedule.DaysRemaining = newDaysRemaining
	schedule.TotalPaid = schedule.TotalPaid.Add(amount)
	schedule.RemainingAmount = schedule.RemainingAmount.Sub(amount)
	schedule.Status = newStatus
	return amount, nil
}
