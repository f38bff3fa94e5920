package services

import (
	"log"
	"time"

	"github.com/google/uuid"
	config "github.com/piczelnft/piczel-sub002/configs"
	"github.com/piczelnft/piczel-sub002/database"
	"github.com/piczelnft/piczel-sub002/models"
	"github.com/piczelnft/piczel-sub002/notifications"
)

type SweepSummary struct {
	Deactivated []uuid.UUID `json:"deactivated"`
	Recovered   []uuid.UUID `json:"recovered"`
	Errors      int         `json:"errors"`
}

// SweepDeactivations finalizes deactivation for every active user whose grace timer has
// elapsed. The balance is re-reconciled first, so a late payment that restored the wallet
// between arming and sweeping leaves the account active (the reconcile itself clears the
// timer in that case). The flip is a conditional update, so two overlapping sweeps cannot
// deactivate the same user twice.
func SweepDeactivations(now time.Time) (*SweepSummary, error) {
	summary := &SweepSummary{}

	batchLimit := config.Int("SWEEP_BATCH_LIMIT", 500)
	budget := config.Duration("JOB_TIME_BUDGET", 4*time.Minute)
	started := time.Now()

	var candidates []models.User
	err := database.DB.
		Where("is_activated = ? AND deactivation_scheduled_at IS NOT NULL AND deactivation_scheduled_at <= ?", true, now).
		Limit(batchLimit).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		if time.Since(started) > budget {
			log.Printf("Sweep budget exhausted after %d of %d users, yielding the rest", i, len(candidates))
			break
		}

		user := &candidates[i]
		result, err := ReconcileHoldingWallet(user.ID)
		if err != nil {
			log.Printf("🔥 Error reconciling member %s during sweep: %v", user.MemberID, err)
			summary.Errors++
			continue
		}

		if result.Balance.Sign() > 0 {
			// Reconcile already cleared the timer.
			summary.Recovered = append(summary.Recovered, user.ID)
			continue
		}

		res := database.DB.Model(&models.User{}).
			Where("id = ? AND is_activated = ? AND deactivation_scheduled_at IS NOT NULL", user.ID, true).
			Updates(map[string]interface{}{
				"is_activated":              false,
				"deactivation_scheduled_at": nil,
				"deactivated_at":            now,
			})
		if res.Error != nil {
			log.Printf("🔥 Error deactivating member %s: %v", user.MemberID, res.Error)
			summary.Errors++
			continue
		}
		if res.RowsAffected == 0 {
			// Another sweep got there first.
			continue
		}

		summary.Deactivated = append(summary.Deactivated, user.ID)
		log.Printf("Member %s deactivated (holding balance %s)", user.MemberID, result.Balance.StringFixed(2))

		go notifications.SendEmail(user.FullName, user.Email,
			"Your account has been deactivated",
			"<h1>Account Deactivated</h1><p>Your holding wallet stayed depleted past the grace period, so your account has been deactivated. Make a new purchase to reactivate it.</p>")
	}

	if len(summary.Deactivated) > 0 || summary.Errors > 0 {
		log.Printf("Deactivation sweep: %d deactivated, %d recovered, %d error(s)",
			len(summary.Deactivated), len(summary.Recovered), summary.Errors)
	}
	return summary, nil
}
