package model

import (
	"time"

	"github.com/google/uuid"
)

// BoardMember is a non-owner collaborator on a board. The board owner
// is never stored as a member row; ownership lives on Board.OwnerID.
type BoardMember struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	BoardID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_board_member"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_board_member"`
	Role     string    `gorm:"not null;default:member"`
	JoinedAt time.Time `gorm:"autoCreateTime"`

	Board Board `gorm:"foreignKey:BoardID"`
	User  User  `gorm:"foreignKey:UserID"`
}

// Member roles. Access is binary (owner or member); roles are carried
// for presentation only.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)
