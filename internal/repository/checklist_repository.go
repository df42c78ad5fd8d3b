package repository

import (
	"context"
	"errors"
	"strings"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChecklistRepository struct {
	db *gorm.DB
}

func NewChecklistRepository(db *gorm.DB) *ChecklistRepository {
	return &ChecklistRepository{db: db}
}

func (r *ChecklistRepository) Create(ctx context.Context, checklist *model.Checklist) error {
	return r.db.WithContext(ctx).Create(checklist).Error
}

func (r *ChecklistRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Checklist, error) {
	var checklist model.Checklist
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&checklist).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &checklist, nil
}

func (r *ChecklistRepository) GetByCardID(ctx context.Context, cardID uuid.UUID) ([]model.Checklist, error) {
	var checklists []model.Checklist
	err := r.db.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("position, created_at").
		Find(&checklists).Error
	return checklists, err
}

func (r *ChecklistRepository) Update(ctx context.Context, checklist *model.Checklist) error {
	return r.db.WithContext(ctx).Save(checklist).Error
}

func (r *ChecklistRepository) Delete(ctx context.Context, checklistID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("checklist_id = ?", checklistID).Delete(&model.ChecklistItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Checklist{}, "id = ?", checklistID).Error
	})
}

func (r *ChecklistRepository) CreateItem(ctx context.Context, item *model.ChecklistItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *ChecklistRepository) GetItemByID(ctx context.Context, id uuid.UUID) (*model.ChecklistItem, error) {
	var item model.ChecklistItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *ChecklistRepository) ItemsByChecklistID(ctx context.Context, checklistID uuid.UUID) ([]model.ChecklistItem, error) {
	var items []model.ChecklistItem
	err := r.db.WithContext(ctx).
		Where("checklist_id = ?", checklistID).
		Order("position, created_at").
		Find(&items).Error
	return items, err
}

func (r *ChecklistRepository) UpdateItem(ctx context.Context, item *model.ChecklistItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *ChecklistRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ChecklistItem{}, "id = ?", itemID).Error
}

// NextItemPosition returns one past the highest sibling position, or
// 0 for an empty checklist, so the simple append path always extends
// the order.
func (r *ChecklistRepository) NextItemPosition(ctx context.Context, checklistID uuid.UUID) (int, error) {
	var last model.ChecklistItem
	err := r.db.WithContext(ctx).
		Where("checklist_id = ?", checklistID).
		Order("position DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return last.Position + 1, nil
}

// SearchItems finds items on the card whose text contains the query,
// case-insensitively, with their parent checklist preloaded.
func (r *ChecklistRepository) SearchItems(ctx context.Context, cardID uuid.UUID, query string) ([]model.ChecklistItem, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	var items []model.ChecklistItem
	err := r.db.WithContext(ctx).
		Preload("Checklist").
		Joins("JOIN checklists ON checklists.id = checklist_items.checklist_id").
		Where("checklists.card_id = ?", cardID).
		Where("LOWER(checklist_items.text) LIKE ?", pattern).
		Find(&items).Error
	return items, err
}
