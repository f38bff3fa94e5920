package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/piczelnft/piczel-sub002/database"
	"github.com/piczelnft/piczel-sub002/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB swaps the global connection for a fresh in-memory sqlite instance.
// Everything the services touch goes through database.DB, so the whole engine runs
// against it unchanged.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.NftPurchase{},
		&models.CommissionSchedule{},
		&models.Withdrawal{},
		&models.SupportTicket{},
		&models.TicketMessage{},
		&models.Setting{},
		&models.JobLock{},
	))

	for _, name := range []string{models.JobLockCommissionDisbursement, models.JobLockDeactivationSweep} {
		require.NoError(t, db.Create(&models.JobLock{Name: name}).Error)
	}

	database.DB = db
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, memberID string, sponsor *models.User) *models.User {
	t.Helper()

	user := &models.User{
		MemberID:    memberID,
		FullName:    "Member " + memberID,
		Email:       memberID + "@example.com",
		Password:    "hashed",
		IsActivated: true,
	}
	if sponsor != nil {
		user.SponsorID = &sponsor.ID
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestPurchase(t *testing.T, db *gorm.DB, user *models.User, price string) *models.NftPurchase {
	t.Helper()

	amount, err := decimal.NewFromString(price)
	require.NoError(t, err)

	purchase := &models.NftPurchase{
		UserID:       user.ID,
		Quantity:     1,
		Price:        amount,
		PayoutStatus: models.PayoutStatusUnpaid,
	}
	require.NoError(t, db.Create(purchase).Error)
	return purchase
}

func markScheduleDue(t *testing.T, db *gorm.DB, scheduleID uuid.UUID) {
	t.Helper()
	require.NoError(t, db.Model(&models.CommissionSchedule{}).
		Where("id = ?", scheduleID).
		Update("next_payment_date", time.Now().Add(-time.Hour)).Error)
}

func reloadSchedule(t *testing.T, db *gorm.DB, scheduleID uuid.UUID) *models.CommissionSchedule {
	t.Helper()
	var schedule models.CommissionSchedule
	require.NoError(t, db.Where("id = ?", scheduleID).First(&schedule).Error)
	return &schedule
}

// sqlite does its column arithmetic in floating point, so accumulated sums carry a tiny
// drift. One part in a million is far tighter than the 2-decimal display precision.
func requireDecimalEqual(t *testing.T, expected, actual decimal.Decimal) {
	t.Helper()
	diff := expected.Sub(actual).Abs()
	require.True(t, diff.LessThan(decimal.New(1, -6)),
		"expected %s, got %s (diff %s)", expected, actual, diff)
}
