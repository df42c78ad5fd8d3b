package model

import (
	"time"

	"github.com/google/uuid"
)

// CardLabel is the card↔label association, modeled as an explicit
// join entity so duplicate/missing attachments can be checked before
// writing.
type CardLabel struct {
	CardID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	LabelID uuid.UUID `gorm:"type:uuid;primaryKey"`
	AddedAt time.Time `gorm:"autoCreateTime"`
}
