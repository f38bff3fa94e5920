package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ScheduleStatusActive    = "active"
	ScheduleStatusCompleted = "completed"
	ScheduleStatusCancelled = "cancelled"
)

// CommissionSchedule is the amortization record behind one level of one purchase:
// totalCommission paid out in totalDays equal increments to the sponsor's holding wallet.
// Invariants maintained by the disbursement engine on every tick:
//
//	DaysPaid + DaysRemaining == TotalDays
//	TotalPaid + RemainingAmount == TotalCommission
type CommissionSchedule struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	NftPurchaseID uuid.UUID `gorm:"type:uuid;not null;index" json:"nft_purchase_id"`

	// UserID is the purchaser whose buy triggered the schedule; SponsorID is the beneficiary.
	UserID          uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	SponsorID       uuid.UUID `gorm:"type:uuid;not null;index" json:"sponsor_id"`
	SponsorMemberID string    `gorm:"size:10;not null" json:"sponsor_member_id"`
	Level           int       `gorm:"not null" json:"level"`

	TotalCommission decimal.Decimal `gorm:"type:numeric(18,8);not null" json:"total_commission"`
	DailyAmount     decimal.Decimal `gorm:"type:numeric(18,8);not null" json:"daily_amount"`
	TotalDays       int             `gorm:"not null" json:"total_days"`
	DaysPaid        int             `gorm:"not null;default:0" json:"days_paid"`
	DaysRemaining   int             `gorm:"not null" json:"days_remaining"`
	TotalPaid       decimal.Decimal `gorm:"type:numeric(18,8);not null;default:0" json:"total_paid"`
	RemainingAmount decimal.Decimal `gorm:"type:numeric(18,8);not null" json:"remaining_amount"`

	Status          string     `gorm:"size:20;not null;default:'active';index" json:"status"`
	NextPaymentDate time.Time  `gorm:"not null;index" json:"next_payment_date"`
	LastPaymentDate *time.Time `json:"last_payment_date"`
	StartDate       time.Time  `gorm:"not null" json:"start_date"`
	EndDate         time.Time  `gorm:"not null" json:"end_date"`

	NftPurchase NftPurchase `gorm:"foreignkey:NftPurchaseID" json:"-"`
	Sponsor     User        `gorm:"foreignkey:SponsorID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *CommissionSchedule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
