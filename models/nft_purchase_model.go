package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PayoutStatusUnpaid = "unpaid"
	PayoutStatusPaid   = "paid"
)

type NftPurchase struct {
	ID       uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Quantity int             `gorm:"not null;default:1" json:"quantity"`
	Price    decimal.Decimal `gorm:"type:numeric(18,8);not null" json:"price"`

	// PayoutStatus flips to paid on the first disbursement tick of any schedule spawned
	// by this purchase; the escrow starts depleting at that moment, and the holding-wallet
	// reconciler only subtracts paid-out amounts from purchases marked paid. PaidOutAmount
	// accumulates tick by tick.
	PayoutStatus  string          `gorm:"size:20;not null;default:'unpaid'" json:"payout_status"`
	PaidOutAmount decimal.Decimal `gorm:"type:numeric(18,8);not null;default:0" json:"paid_out_amount"`
	PaidOutAt     *time.Time      `json:"paid_out_at"`

	User User `gorm:"foreignkey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *NftPurchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
