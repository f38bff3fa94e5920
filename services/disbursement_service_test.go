package services

import (
	"testing"
	"time"

	"github.com/piczelnft/piczel-sub002/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestProcessDuePaysOneTick(t *testing.T) {
	db := setupTestDB(t)

	sponsor := createTestUser(t, db, "DSPONS01", nil)
	buyer := createTestUser(t, db, "DBUYER01", sponsor)
	purchase := createTestPurchase(t, db, buyer, "365")

	schedules, err := CreateSchedulesForPurchase(purchase)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	markScheduleDue(t, db, schedules[0].ID)

	now := time.Now()
	summary, err := ProcessDueCommissions(now)
	require.NoError(t, err)
	require.Len(t, summary.Processed, 1)
	require.Empty(t, summary.Errors)

	// 10% of 365 over 365 days: one tick pays exactly 0.1.
	requireDecimalEqual(t, decimal.NewFromFloat(0.1), summary.TotalAmount)

	s := reloadSchedule(t, db, schedules[0].ID)
	require.Equal(t, 1, s.DaysPaid)
	require.Equal(t, AmortizationDays-1, s.DaysRemaining)
	require.Equal(t, models.ScheduleStatusActive, s.Status)
	require.NotNil(t, s.LastPaymentDate)
	require.True(t, s.NextPaymentDate.After(now))
	requireDecimalEqual(t, decimal.NewFromFloat(0.1), s.TotalPaid)
	requireDecimalEqual(t, decimal.NewFromFloat(36.4), s.RemainingAmount)

	// Sponsor earnings land in the commission wallet.
	var reloadedSponsor models.User
	require.NoError(t, db.Where("id = ?", sponsor.ID).First(&reloadedSponsor).Error)
	requireDecimalEqual(t, decimal.NewFromFloat(0.1), reloadedSponsor.CommissionWalletBalance)

	// The purchase records the synthetic increment and flips to paid on the first tick.
	var reloadedPurchase models.NftPurchase
	require.NoError(t, db.Where("id = ?", purchase.ID).First(&reloadedPurchase).Error)
	require.Equal(t, models.PayoutStatusPaid, reloadedPurchase.PayoutStatus)
	require.NotNil(t, reloadedPurchase.PaidOutAt)
	requireDecimalEqual(t, decimal.NewFromFloat(0.1), reloadedPurchase.PaidOutAmount)
}

func TestProcessDueSameInstantTwicePaysOnce(t *testing.T) {
	db := setupTestDB(t)

	sponsor := createTestUser(t, db, "DSPONS02", nil)
	buyer := createTestUser(t, db, "DBUYER02", sponsor)
	purchase := createTestPurchase(t, db, buyer, "100")

	schedules, err := CreateSchedulesForPurchase(purchase)
	require.NoError(t, err)
	markScheduleDue(t, db, schedules[0].ID)

	now := time.Now()
	first, err := ProcessDueCommissions(now)
	require.NoError(t, err)
	require.Len(t, first.Processed, 1)

	second, err := ProcessDueCommissions(now)
	require.NoError(t, err)
	require.Empty(t, second.Processed)

	s := reloadSchedule(t, db, schedules[0].ID)
	require.Equal(t, 1, s.DaysPaid)
}

func TestProcessDueInvariantsHoldAcrossTicks(t *testing.T) {
	db := setupTestDB(t)

	sponsor := createTestUser(t, db, "DSPONS03", nil)
	buyer := createTestUser(t, db, "DBUYER03", sponsor)
	purchase := createTestPurchase(t, db, buyer, "100")

	schedules, err := CreateSchedulesForPurchase(purchase)
	require.NoError(t, err)
	scheduleID := schedules[0].ID

	for tick := 1; tick <= 20; tick++ {
		markScheduleDue(t, db, scheduleID)
		summary, err := ProcessDueCommissions(time.Now())
		require.NoError(t, err)
		require.Len(t, summary.Processed, 1, "tick %d", tick)

		s := reloadSchedule(t, db, scheduleID)
		require.Equal(t, s.TotalDays, s.DaysPaid+s.DaysRemaining, "tick %d", tick)
		requireDecimalEqual(t, s.TotalCommission, s.TotalPaid.Add(s.RemainingAmount))
	}

	s := reloadSchedule(t, db, scheduleID)
	require.Equal(t, 20, s.DaysPaid)
}

func TestFinalTickIsCappedAndCompletes(t *testing.T) {
	db := setupTestDB(t)

	sponsor := createTestUser(t, db, "DSPONS04", nil)
	buyer := createTestUser(t, db, "DBUYER04", sponsor)
	purchase := createTestPurchase(t, db, buyer, "100")

	total := decimal.RequireFromString("10.95")
	schedule := models.CommissionSchedule{
		NftPurchaseID:   purchase.ID,
		UserID:          buyer.ID,
		SponsorID:       sponsor.ID,
		SponsorMemberID: sponsor.MemberID,
		Level:           1,
		TotalCommission: total,
		DailyAmount:     decimal.RequireFromString("0.03"),
		TotalDays:       AmortizationDays,
		DaysPaid:        AmortizationDays - 1,
		DaysRemaining:   1,
		TotalPaid:       total.Sub(decimal.RequireFromString("0.02")),
		RemainingAmount: decimal.RequireFromString("0.02"),
		Status:          models.ScheduleStatusActive,
		NextPaymentDate: time.Now().Add(-time.Minute),
		StartDate:       time.Now().AddDate(0, 0, -AmortizationDays),
		EndDate:         time.Now(),
	}
	require.NoError(t, db.Create(&schedule).Error)

	summary, err := ProcessDueCommissions(time.Now())
	require.NoError(t, err)
	require.Len(t, summary.Processed, 1)

	// Pays the 0.02 left, not the 0.03 daily amount.
	requireDecimalEqual(t, decimal.RequireFromString("0.02"), summary.TotalAmount)

	s := reloadSchedule(t, db, schedule.ID)
	require.Equal(t, models.ScheduleStatusCompleted, s.Status)
	require.Equal(t, 0, s.DaysRemaining)
	require.Equal(t, AmortizationDays, s.DaysPaid)
	require.True(t, s.RemainingAmount.IsZero(), "remaining = %s", s.RemainingAmount)
	requireDecimalEqual(t, total, s.TotalPaid)

	// Completed schedules are never selected again.
	markScheduleDue(t, db, schedule.ID)
	again, err := ProcessDueCommissions(time.Now())
	require.NoError(t, err)
	require.Empty(t, again.Processed)
}

func TestProcessDueIsolatesFailures(t *testing.T) {
	db := setupTestDB(t)

	goodSponsor := createTestUser(t, db, "DSPONS05", nil)
	goodBuyer := createTestUser(t, db, "DBUYER05", goodSponsor)
	goodPurchase := createTestPurchase(t, db, goodBuyer, "100")
	goodSchedules, err := CreateSchedulesForPurchase(goodPurchase)
	require.NoError(t, err)

	badSponsor := createTestUser(t, db, "DSPONS06", nil)
	badBuyer := createTestUser(t, db, "DBUYER06", badSponsor)
	badPurchase := createTestPurchase(t, db, badBuyer, "100")
	badSchedules, err := CreateSchedulesForPurchase(badPurchase)
	require.NoError(t, err)

	// The bad schedule's sponsor disappears before the run.
	require.NoError(t, db.Delete(&models.User{}, "id = ?", badSponsor.ID).Error)

	markScheduleDue(t, db, goodSchedules[0].ID)
	markScheduleDue(t, db, badSchedules[0].ID)

	summary, err := ProcessDueCommissions(time.Now())
	require.NoError(t, err)
	require.Len(t, summary.Processed, 1)
	require.Equal(t, goodSchedules[0].ID, summary.Processed[0])
	require.Len(t, summary.Errors, 1)
	require.Equal(t, badSchedules[0].ID, summary.Errors[0].ScheduleID)

	// The failed schedule kept its state and stays due for the next run.
	s := reloadSchedule(t, db, badSchedules[0].ID)
	require.Zero(t, s.DaysPaid)
	require.True(t, s.TotalPaid.IsZero())
}

func TestProcessDueNothingDueIsCheapNoop(t *testing.T) {
	db := setupTestDB(t)

	sponsor := createTestUser(t, db, "DSPONS07", nil)
	buyer := createTestUser(t, db, "DBUYER07", sponsor)
	purchase := createTestPurchase(t, db, buyer, "100")
	_, err := CreateSchedulesForPurchase(purchase)
	require.NoError(t, err)

	// next_payment_date is in the future, so nothing qualifies.
	summary, err := ProcessDueCommissions(time.Now())
	require.NoError(t, err)
	require.Empty(t, summary.Processed)
	require.Empty(t, summary.Errors)
	require.True(t, summary.TotalAmount.IsZero())
}

func TestDisbursementDepletesBuyerHoldingWallet(t *testing.T) {
	db := setupTestDB(t)

	sponsor := createTestUser(t, db, "DSPONS08", nil)
	buyer := createTestUser(t, db, "DBUYER08", sponsor)
	purchase := createTestPurchase(t, db, buyer, "100")
	schedules, err := CreateSchedulesForPurchase(purchase)
	require.NoError(t, err)
	markScheduleDue(t, db, schedules[0].ID)

	_, err = ProcessDueCommissions(time.Now())
	require.NoError(t, err)

	var reloaded models.User
	require.NoError(t, db.Where("id = ?", buyer.ID).First(&reloaded).Error)

	// 100 minus the first tick of 10/365.
	expected := decimal.NewFromInt(100).Sub(decimal.NewFromInt(10).Div(decimal.NewFromInt(AmortizationDays)))
	requireDecimalEqual(t, expected, reloaded.HoldingWalletBalance)
}

func TestPurchaseMarkedPaidOnFirstTickWhileScheduleActive(t *testing.T) {
	db := setupTestDB(t)

	sponsor := createTestUser(t, db, "DSPONS09", nil)
	buyer := createTestUser(t, db, "DBUYER09", sponsor)
	purchase := createTestPurchase(t, db, buyer, "365")
	schedules, err := CreateSchedulesForPurchase(purchase)
	require.NoError(t, err)
	markScheduleDue(t, db, schedules[0].ID)

	_, err = ProcessDueCommissions(time.Now())
	require.NoError(t, err)

	// One tick in: the schedule has 364 days to go, but the purchase already reads as
	// paid so the reconciler counts the depleting escrow from day one.
	s := reloadSchedule(t, db, schedules[0].ID)
	require.Equal(t, models.ScheduleStatusActive, s.Status)
	require.Equal(t, AmortizationDays-1, s.DaysRemaining)

	var reloaded models.NftPurchase
	require.NoError(t, db.Where("id = ?", purchase.ID).First(&reloaded).Error)
	require.Equal(t, models.PayoutStatusPaid, reloaded.PayoutStatus)
	require.NotNil(t, reloaded.PaidOutAt)
}
