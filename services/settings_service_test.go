package services

import (
	"testing"
	"time"

	"github.com/piczelnft/piczel-sub002/models"
	"github.com/stretchr/testify/require"
)

func TestSettingsFallBackToDefaults(t *testing.T) {
	setupTestDB(t)

	require.Equal(t, DefaultPaymentInterval, PaymentInterval())
	require.Equal(t, DefaultDeactivationGracePeriod, DeactivationGracePeriod())
}

func TestSettingsDatabaseOverride(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, UpdateSetting(models.SettingPaymentInterval, "5m"))
	require.NoError(t, UpdateSetting(models.SettingDeactivationGracePeriod, "10m"))

	require.Equal(t, 5*time.Minute, PaymentInterval())
	require.Equal(t, 10*time.Minute, DeactivationGracePeriod())

	// Updating again replaces, not duplicates.
	require.NoError(t, UpdateSetting(models.SettingPaymentInterval, "24h"))
	require.Equal(t, 24*time.Hour, PaymentInterval())
}

func TestUpdateSettingRejectsBadInput(t *testing.T) {
	setupTestDB(t)

	require.ErrorIs(t, UpdateSetting("unknown_key", "5m"), ErrValidation)
	require.ErrorIs(t, UpdateSetting(models.SettingPaymentInterval, "soon"), ErrValidation)
	require.ErrorIs(t, UpdateSetting(models.SettingPaymentInterval, "-5m"), ErrValidation)
}

func TestSettingChangeOnlyAffectsFutureScheduling(t *testing.T) {
	db := setupTestDB(t)

	sponsor := createTestUser(t, db, "SETSPON1", nil)
	buyer := createTestUser(t, db, "SETBUYR1", sponsor)
	purchase := createTestPurchase(t, db, buyer, "100")

	require.NoError(t, UpdateSetting(models.SettingPaymentInterval, "5m"))
	schedules, err := CreateSchedulesForPurchase(purchase)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	originalNext := schedules[0].NextPaymentDate

	// Widening the interval leaves the already-stored next_payment_date alone.
	require.NoError(t, UpdateSetting(models.SettingPaymentInterval, "24h"))

	s := reloadSchedule(t, db, schedules[0].ID)
	require.Equal(t, originalNext.Unix(), s.NextPaymentDate.Unix())
}
