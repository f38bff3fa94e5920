package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	MemberID string    `gorm:"size:10;not null;unique" json:"member_id"`
	FullName string    `gorm:"size:255;not null" json:"full_name"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Role     string    `gorm:"size:20;not null;default:'member'" json:"role"`

	// SponsorID points at the user one level up in the referral tree.
	// Null for root users. Child -> parent only; the tree is never walked downward in memory.
	SponsorID *uuid.UUID `gorm:"type:uuid;index" json:"sponsor_id"`
	Sponsor   *User      `gorm:"foreignkey:SponsorID" json:"-"`

	IsActivated bool `gorm:"default:true" json:"is_activated"`

	// HoldingWalletBalance is a cached view of purchases minus paid-out commissions minus
	// withdrawals. It is recomputed by the wallet reconciler and may go negative.
	HoldingWalletBalance decimal.Decimal `gorm:"type:numeric(18,8);default:0" json:"holding_wallet_balance"`

	// CommissionWalletBalance holds earnings received as a sponsor. Kept apart from the
	// holding wallet: commission income never props up a depleted escrow.
	CommissionWalletBalance decimal.Decimal `gorm:"type:numeric(18,8);default:0" json:"commission_wallet_balance"`
	DeactivationScheduledAt *time.Time      `json:"deactivation_scheduled_at"`
	DeactivatedAt           *time.Time      `json:"deactivated_at"`

	ProfilePictureURL *string `gorm:"size:255" json:"profile_picture_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
