package services

import (
	"testing"
	"time"

	"github.com/piczelnft/piczel-sub002/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func armUserForSweep(t *testing.T, db *gorm.DB, memberID string) *models.User {
	t.Helper()

	user := createTestUser(t, db, memberID, nil)
	createTestPurchase(t, db, user, "50")
	addWithdrawal(t, user, "60", models.WithdrawalStatusPending)

	_, err := ReconcileHoldingWallet(user.ID)
	require.NoError(t, err)

	// Pull the armed deadline into the past so the sweep sees it as elapsed.
	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("deactivation_scheduled_at", time.Now().Add(-time.Minute)).Error)
	return user
}

func TestSweepDeactivatesAfterGrace(t *testing.T) {
	db := setupTestDB(t)

	user := armUserForSweep(t, db, "SWEEP001")

	summary, err := SweepDeactivations(time.Now())
	require.NoError(t, err)
	require.Len(t, summary.Deactivated, 1)
	require.Equal(t, user.ID, summary.Deactivated[0])

	var reloaded models.User
	require.NoError(t, db.Where("id = ?", user.ID).First(&reloaded).Error)
	require.False(t, reloaded.IsActivated)
	require.Nil(t, reloaded.DeactivationScheduledAt)
	require.NotNil(t, reloaded.DeactivatedAt)
}

func TestSweepSparesRecoveredBalance(t *testing.T) {
	db := setupTestDB(t)

	user := armUserForSweep(t, db, "SWEEP002")

	// Balance recovers before the sweep runs.
	createTestPurchase(t, db, user, "15")

	summary, err := SweepDeactivations(time.Now())
	require.NoError(t, err)
	require.Empty(t, summary.Deactivated)
	require.Len(t, summary.Recovered, 1)

	var reloaded models.User
	require.NoError(t, db.Where("id = ?", user.ID).First(&reloaded).Error)
	require.True(t, reloaded.IsActivated)
	require.Nil(t, reloaded.DeactivationScheduledAt)
	require.Nil(t, reloaded.DeactivatedAt)
}

func TestSweepTwiceDeactivatesOnce(t *testing.T) {
	db := setupTestDB(t)

	user := armUserForSweep(t, db, "SWEEP003")

	first, err := SweepDeactivations(time.Now())
	require.NoError(t, err)
	require.Len(t, first.Deactivated, 1)

	second, err := SweepDeactivations(time.Now())
	require.NoError(t, err)
	require.Empty(t, second.Deactivated)
	require.Empty(t, second.Recovered)

	var reloaded models.User
	require.NoError(t, db.Where("id = ?", user.ID).First(&reloaded).Error)
	require.False(t, reloaded.IsActivated)
}

func TestSweepIgnoresUnarmedAndFutureTimers(t *testing.T) {
	db := setupTestDB(t)

	healthy := createTestUser(t, db, "SWEEP004", nil)
	createTestPurchase(t, db, healthy, "100")

	notYet := createTestUser(t, db, "SWEEP005", nil)
	addWithdrawal(t, notYet, "10", models.WithdrawalStatusPending)
	_, err := ReconcileHoldingWallet(notYet.ID)
	require.NoError(t, err)
	// Grace period has not elapsed; timer sits in the future.

	summary, err := SweepDeactivations(time.Now())
	require.NoError(t, err)
	require.Empty(t, summary.Deactivated)

	var reloaded models.User
	require.NoError(t, db.Where("id = ?", notYet.ID).First(&reloaded).Error)
	require.True(t, reloaded.IsActivated)
	require.NotNil(t, reloaded.DeactivationScheduledAt)
}
