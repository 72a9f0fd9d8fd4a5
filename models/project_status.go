package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectStatus is the per-(user, customer) record carrying the project
// lifecycle status and the payment totals the ledger maintains.
type ProjectStatus struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID     uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_customer,priority:1;not null"`
	CustomerID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_customer,priority:2;not null"`

	Name     string `gorm:"not null"`
	Status   string `gorm:"not null"` // "Enquiry", "Design & Quotation", "Order Done"
	Feedback string

	MeetingDate *time.Time

	TotalAmount   float64 `gorm:"type:decimal(10,2);default:0.0"`
	PaidAmount    float64 `gorm:"type:decimal(10,2);default:0.0"`
	PaymentStatus string  `gorm:"type:varchar(20);default:'Pending'"`

	Files    []ProjectFile    `gorm:"foreignKey:ProjectID"`
	Payments []PaymentHistory `gorm:"foreignKey:ProjectID"`

	gorm.Model
}

func (p *ProjectStatus) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

const (
	FileKindQuotation = "quotation"
	FileKindImage     = "image"
)

// ProjectFile is one uploaded attachment: the stored path on disk plus the
// original filename shown to the user.
type ProjectFile struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	ProjectID uuid.UUID `gorm:"type:uuid;index;not null"`

	Kind         string `gorm:"type:varchar(20);not null"` // quotation, image
	Path         string `gorm:"not null"`
	OriginalName string `gorm:"not null"`
	Size         int64

	gorm.Model
}

func (f *ProjectFile) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return
}
