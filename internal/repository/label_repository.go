package repository

import (
	"context"
	"errors"
	"strings"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LabelRepository struct {
	db *gorm.DB
}

func NewLabelRepository(db *gorm.DB) *LabelRepository {
	return &LabelRepository{db: db}
}

func (r *LabelRepository) Create(ctx context.Context, label *model.Label) error {
	return r.db.WithContext(ctx).Create(label).Error
}

func (r *LabelRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Label, error) {
	var label model.Label
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&label).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &label, nil
}

func (r *LabelRepository) GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.Label, error) {
	var labels []model.Label
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("created_at").
		Find(&labels).Error
	return labels, err
}

func (r *LabelRepository) Update(ctx context.Context, label *model.Label) error {
	return r.db.WithContext(ctx).Save(label).Error
}

// Delete removes the label and its card associations.
func (r *LabelRepository) Delete(ctx context.Context, labelID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("label_id = ?", labelID).Delete(&model.CardLabel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Label{}, "id = ?", labelID).Error
	})
}

// Search finds labels in the given boards whose name contains the
// query, case-insensitively.
func (r *LabelRepository) Search(ctx context.Context, boardIDs []uuid.UUID, query string) ([]model.Label, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	var labels []model.Label
	err := r.db.WithContext(ctx).
		Where("board_id IN ?", boardIDs).
		Where("LOWER(name) LIKE ?", pattern).
		Find(&labels).Error
	return labels, err
}
