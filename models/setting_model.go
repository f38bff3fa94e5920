package models

import "time"

// Runtime-tunable operational values (payment interval, deactivation grace period).
// Schedule rows store their own computed next_payment_date, so changing a setting only
// affects future scheduling, never commitments already written.
type Setting struct {
	Key   string `gorm:"size:100;primary_key" json:"key"`
	Value string `gorm:"size:255;not null" json:"value"`

	UpdatedAt time.Time `json:"updated_at"`
}

const (
	SettingPaymentInterval         = "payment_interval"
	SettingDeactivationGracePeriod = "deactivation_grace_period"
)
