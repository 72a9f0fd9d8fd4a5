package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerType is a user-editable vocabulary entry, e.g. "End User",
// "Architect", "Interior Designer", "Broker".
type CustomerType struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key"`
	Name string    `gorm:"uniqueIndex;not null"`

	gorm.Model
}

func (t *CustomerType) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}
