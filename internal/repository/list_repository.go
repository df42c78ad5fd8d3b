package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListRepository struct {
	db *gorm.DB
}

func NewListRepository(db *gorm.DB) *ListRepository {
	return &ListRepository{db: db}
}

func (r *ListRepository) Create(ctx context.Context, list *model.List) error {
	return r.db.WithContext(ctx).Create(list).Error
}

func (r *ListRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.List, error) {
	var list model.List
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&list).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &list, nil
}

// GetByBoardID returns the board's lists in display order. Ties on
// position fall back to insertion order.
func (r *ListRepository) GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.List, error) {
	var lists []model.List
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("position, created_at").
		Find(&lists).Error
	return lists, err
}

func (r *ListRepository) Update(ctx context.Context, list *model.List) error {
	return r.db.WithContext(ctx).Save(list).Error
}

// Delete removes the list and its cards with their checklists, label
// associations, and attachment records in one transaction.
func (r *ListRepository) Delete(ctx context.Context, listID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cardIDs := tx.Model(&model.Card{}).Select("id").Where("list_id = ?", listID)

		if err := tx.Exec(
			"DELETE FROM checklist_items WHERE checklist_id IN (SELECT id FROM checklists WHERE card_id IN (?))",
			cardIDs,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("card_id IN (?)", cardIDs).Delete(&model.Checklist{}).Error; err != nil {
			return err
		}
		if err := tx.Where("card_id IN (?)", cardIDs).Delete(&model.CardLabel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("card_id IN (?)", cardIDs).Delete(&model.FileAttachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("list_id = ?", listID).Delete(&model.Card{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.List{}, "id = ?", listID).Error
	})
}
