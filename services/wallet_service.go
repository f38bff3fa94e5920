package services

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/piczelnft/piczel-sub002/database"
	"github.com/piczelnft/piczel-sub002/models"
	"github.com/piczelnft/piczel-sub002/notifications"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReconcileResult struct {
	Balance      decimal.Decimal `json:"balance"`
	Changed      bool            `json:"changed"`
	TimerArmed   bool            `json:"timer_armed"`
	TimerCleared bool            `json:"timer_cleared"`
}

// ComputeHoldingBalance derives the ground-truth holding balance for a user:
//
//	Σ purchase.price − Σ paid_out_amount (purchases marked paid) − Σ withdrawals in
//	{pending, approved, completed}
//
// Deterministic and read-only; the cached column on the user row is never consulted.
func ComputeHoldingBalance(tx *gorm.DB, userID uuid.UUID) (decimal.Decimal, error) {
	if tx == nil {
		tx = database.DB
	}

	var purchased decimal.Decimal
	err := tx.Model(&models.NftPurchase{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(price), 0)").
		Row().Scan(&purchased)
	if err != nil {
		return decimal.Zero, err
	}

	var paidOut decimal.Decimal
	err = tx.Model(&models.NftPurchase{}).
		Where("user_id = ? AND payout_status = ?", userID, models.PayoutStatusPaid).
		Select("COALESCE(SUM(paid_out_amount), 0)").
		Row().Scan(&paidOut)
	if err != nil {
		return decimal.Zero, err
	}

	var withdrawn decimal.Decimal
	err = tx.Model(&models.Withdrawal{}).
		Where("user_id = ? AND status IN ?", userID,
			[]string{models.WithdrawalStatusPending, models.WithdrawalStatusApproved, models.WithdrawalStatusCompleted}).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&withdrawn)
	if err != nil {
		return decimal.Zero, err
	}

	return purchased.Sub(paidOut).Sub(withdrawn), nil
}

// ReconcileHoldingWallet recomputes the user's true holding balance, writes it through to
// the cached column, and arms or disarms the deactivation timer:
//
//   - balance ≤ 0, user active, no timer → timer set to now + grace period
//   - balance > 0, timer armed → timer cleared
//
// The cached column is always overwritten, whichever direction it moved.
func ReconcileHoldingWallet(userID uuid.UUID) (*ReconcileResult, error) {
	var user models.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	balance, err := ComputeHoldingBalance(database.DB, userID)
	if err != nil {
		return nil, err
	}

	result := &ReconcileResult{
		Balance: balance,
		Changed: !balance.Equal(user.HoldingWalletBalance),
	}

	updates := map[string]interface{}{
		"holding_wallet_balance": balance,
	}

	if balance.Sign() <= 0 && user.IsActivated && user.DeactivationScheduledAt == nil {
		deadline := time.Now().Add(DeactivationGracePeriod())
		updates["deactivation_scheduled_at"] = deadline
		result.TimerArmed = true
		log.Printf("Holding wallet depleted for member %s (balance %s), deactivation scheduled at %s",
			user.MemberID, balance.StringFixed(2), deadline.Format(time.RFC3339))
	} else if balance.Sign() > 0 && user.DeactivationScheduledAt != nil {
		updates["deactivation_scheduled_at"] = nil
		result.TimerCleared = true
		log.Printf("Holding wallet recovered for member %s (balance %s), deactivation timer cleared",
			user.MemberID, balance.StringFixed(2))
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return nil, err
	}

	if result.TimerArmed {
		go notifications.SendEmail(user.FullName, user.Email,
			"Your holding wallet is depleted",
			"<h1>Action Needed</h1><p>Your holding wallet balance has reached zero. Top it up with a new purchase before the grace period ends or your account will be deactivated.</p>")
	}

	return result, nil
}
