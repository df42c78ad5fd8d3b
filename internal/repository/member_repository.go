package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) Add(ctx context.Context, member *model.BoardMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *MemberRepository) Get(ctx context.Context, boardID, userID uuid.UUID) (*model.BoardMember, error) {
	var member model.BoardMember
	err := r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *MemberRepository) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]model.BoardMember, error) {
	var members []model.BoardMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("board_id = ?", boardID).
		Order("joined_at").
		Find(&members).Error
	return members, err
}

func (r *MemberRepository) Remove(ctx context.Context, boardID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Delete(&model.BoardMember{}).Error
}
