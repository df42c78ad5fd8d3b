package model

import (
	"time"

	"github.com/google/uuid"
)

type Card struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ListID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"not null"`
	Description string
	Position    int `gorm:"not null;default:0"`
	DueDate     *time.Time
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`

	List    List `gorm:"foreignKey:ListID"`
	Creator User `gorm:"foreignKey:CreatedBy"`
}
