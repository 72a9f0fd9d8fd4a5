package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentMethodCash         = "Cash"
	PaymentMethodCard         = "Card"
	PaymentMethodUPI          = "UPI"
	PaymentMethodBankTransfer = "Bank Transfer"
)

// PaymentHistory is one immutable record of a single payment event against a
// project. Status is a snapshot of the project's payment status right after
// this entry was applied.
type PaymentHistory struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	ProjectID  uuid.UUID `gorm:"type:uuid;index;not null"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null"`

	Amount        float64 `gorm:"type:decimal(10,2);not null"`
	Status        string  `gorm:"type:varchar(20);not null"`
	PaymentMethod string  `gorm:"type:varchar(20);default:'Cash'"`
	ReferenceID   string
	Remarks       string

	CreatedAt time.Time
}

func (p *PaymentHistory) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
