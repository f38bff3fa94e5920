package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	WithdrawalStatusPending   = "pending"
	WithdrawalStatusApproved  = "approved"
	WithdrawalStatusCompleted = "completed"
	WithdrawalStatusRejected  = "rejected"
	WithdrawalStatusCancelled = "cancelled"
)

// Pending, approved and completed withdrawals all count against the holding wallet;
// rejected and cancelled ones do not.
type Withdrawal struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(18,8);not null" json:"amount"`
	Status      string          `gorm:"size:20;not null;default:'pending'" json:"status"`
	AdminNotes  *string         `gorm:"type:text" json:"admin_notes"`
	RequestedAt time.Time       `gorm:"not null" json:"requested_at"`
	ProcessedAt *time.Time      `json:"processed_at"`

	User User `gorm:"foreignkey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (w *Withdrawal) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
