package model

import (
	"time"

	"github.com/google/uuid"
)

type Checklist struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CardID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string    `gorm:"not null;default:Checklist"`
	Position  int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Card Card `gorm:"foreignKey:CardID"`
}

type ChecklistItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChecklistID uuid.UUID `gorm:"type:uuid;not null;index"`
	Text        string    `gorm:"not null"`
	IsCompleted bool      `gorm:"not null;default:false"`
	CompletedAt *time.Time
	Position    int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`

	Checklist Checklist `gorm:"foreignKey:ChecklistID"`
}
