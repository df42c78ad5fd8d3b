package model

import (
	"time"

	"github.com/google/uuid"
)

type Label struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BoardID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"not null"`
	Color     string    `gorm:"not null"` // hex, #rgb or #rrggbb
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Board Board `gorm:"foreignKey:BoardID"`
}
