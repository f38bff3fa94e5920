package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupportTicket struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Subject  string    `gorm:"size:255;not null" json:"subject"`
	Status   string    `gorm:"size:20;not null;default:'open'" json:"status"`
	Priority string    `gorm:"size:20;not null;default:'normal'" json:"priority"`

	User     User            `gorm:"foreignkey:UserID" json:"-"`
	Messages []TicketMessage `gorm:"foreignkey:TicketID" json:"messages,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TicketMessage struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TicketID uuid.UUID `gorm:"type:uuid;not null;index" json:"ticket_id"`
	SenderID uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	Content  string    `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time `json:"created_at"`
}

func (t *SupportTicket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (m *TicketMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
