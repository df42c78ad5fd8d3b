package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(ctx context.Context, attachment *model.FileAttachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *AttachmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.FileAttachment, error) {
	var attachment model.FileAttachment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&attachment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attachment, nil
}

func (r *AttachmentRepository) GetByCardID(ctx context.Context, cardID uuid.UUID) ([]model.FileAttachment, error) {
	var attachments []model.FileAttachment
	err := r.db.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("uploaded_at DESC").
		Find(&attachments).Error
	return attachments, err
}

func (r *AttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.FileAttachment{}, "id = ?", id).Error
}

// PathsForBoard collects the stored file paths of every attachment
// reachable from the board, for post-delete file cleanup.
func (r *AttachmentRepository) PathsForBoard(ctx context.Context, boardID uuid.UUID) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Model(&model.FileAttachment{}).
		Joins("JOIN cards ON cards.id = file_attachments.card_id").
		Joins("JOIN lists ON lists.id = cards.list_id").
		Where("lists.board_id = ?", boardID).
		Pluck("file_attachments.file_path", &paths).Error
	return paths, err
}

// PathsForList collects stored file paths for a list's cards.
func (r *AttachmentRepository) PathsForList(ctx context.Context, listID uuid.UUID) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Model(&model.FileAttachment{}).
		Joins("JOIN cards ON cards.id = file_attachments.card_id").
		Where("cards.list_id = ?", listID).
		Pluck("file_attachments.file_path", &paths).Error
	return paths, err
}

// PathsForCard collects stored file paths for a single card.
func (r *AttachmentRepository) PathsForCard(ctx context.Context, cardID uuid.UUID) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Model(&model.FileAttachment{}).
		Where("card_id = ?", cardID).
		Pluck("file_path", &paths).Error
	return paths, err
}
