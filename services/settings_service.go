package services

import (
	"errors"
	"log"
	"time"

	config "github.com/piczelnft/piczel-sub002/configs"
	"github.com/piczelnft/piczel-sub002/database"
	"github.com/piczelnft/piczel-sub002/models"
	"gorm.io/gorm"
)

// Operational defaults. Live values come from the settings table; the env vars below only
// seed the fallback. Both intervals have changed across deployments (minutes in demo,
// hours in production), which is why they are data, not constants.
const (
	DefaultPaymentInterval         = 24 * time.Hour
	DefaultDeactivationGracePeriod = 48 * time.Hour
)

func settingDuration(key string, def time.Duration) time.Duration {
	var setting models.Setting
	err := database.DB.Where("key = ?", key).First(&setting).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Error reading setting %s: %v", key, err)
		}
		return def
	}

	d, err := time.ParseDuration(setting.Value)
	if err != nil || d <= 0 {
		log.Printf("Warning: setting %s holds invalid duration %q, using default %s", key, setting.Value, def)
		return def
	}
	return d
}

// PaymentInterval is the gap between disbursement ticks for a schedule. Changing it only
// affects next_payment_date values computed from now on.
func PaymentInterval() time.Duration {
	return settingDuration(models.SettingPaymentInterval, config.Duration("PAYMENT_INTERVAL", DefaultPaymentInterval))
}

// DeactivationGracePeriod is how long a depleted holding wallet may stay at or below zero
// before the sweeper deactivates the account.
func DeactivationGracePeriod() time.Duration {
	return settingDuration(models.SettingDeactivationGracePeriod, config.Duration("DEACTIVATION_GRACE_PERIOD", DefaultDeactivationGracePeriod))
}

// UpdateSetting validates and persists a runtime setting. Only duration-valued keys exist
// today, so the value must parse as a positive Go duration.
func UpdateSetting(key, value string) error {
	switch key {
	case models.SettingPaymentInterval, models.SettingDeactivationGracePeriod:
	default:
		return ErrValidation
	}

	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return ErrValidation
	}

	setting := models.Setting{Key: key, Value: value}
	return database.DB.Save(&setting).Error
}
