package model

import (
	"time"

	"github.com/google/uuid"
)

type FileAttachment struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	CardID           uuid.UUID `gorm:"type:uuid;not null;index"`
	Filename         string    `gorm:"not null"` // stored name, unique on disk
	OriginalFilename string    `gorm:"not null"`
	FilePath         string    `gorm:"not null"`
	FileSize         int64     `gorm:"not null"`
	MimeType         string    `gorm:"not null"`
	UploadedBy       uuid.UUID `gorm:"type:uuid;not null"`
	UploadedAt       time.Time `gorm:"autoCreateTime"`

	Card     Card `gorm:"foreignKey:CardID"`
	Uploader User `gorm:"foreignKey:UploadedBy"`
}
