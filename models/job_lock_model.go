package models

import "time"

// JobLock is a row-based advisory lock. A trigger run claims the row with a conditional
// update before touching any schedules, so two overlapping runs of the same job type
// cannot both process a batch. LockedUntil is a TTL guard against a crashed holder.
type JobLock struct {
	Name        string     `gorm:"size:100;primary_key" json:"name"`
	Owner       *string    `gorm:"size:100" json:"owner"`
	LockedAt    *time.Time `json:"locked_at"`
	LockedUntil *time.Time `json:"locked_until"`

	UpdatedAt time.Time `json:"updated_at"`
}

const (
	JobLockCommissionDisbursement = "commission_disbursement"
	JobLockDeactivationSweep      = "deactivation_sweep"
)
