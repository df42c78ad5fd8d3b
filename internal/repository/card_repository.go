package repository

import (
	"context"
	"errors"
	"strings"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) Create(ctx context.Context, card *model.Card) error {
	return r.db.WithContext(ctx).Create(card).Error
}

func (r *CardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Card, error) {
	var card model.Card
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

func (r *CardRepository) GetByListID(ctx context.Context, listID uuid.UUID) ([]model.Card, error) {
	var cards []model.Card
	err := r.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Order("position, created_at").
		Find(&cards).Error
	return cards, err
}

func (r *CardRepository) Update(ctx context.Context, card *model.Card) error {
	return r.db.WithContext(ctx).Save(card).Error
}

// Delete removes the card together with its checklists, checklist
// items, label associations, and attachment records.
func (r *CardRepository) Delete(ctx context.Context, cardID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM checklist_items WHERE checklist_id IN (SELECT id FROM checklists WHERE card_id = ?)",
			cardID,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("card_id = ?", cardID).Delete(&model.Checklist{}).Error; err != nil {
			return err
		}
		if err := tx.Where("card_id = ?", cardID).Delete(&model.CardLabel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("card_id = ?", cardID).Delete(&model.FileAttachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Card{}, "id = ?", cardID).Error
	})
}

// Search finds cards in the given boards whose title or description
// contains the query, case-insensitively.
func (r *CardRepository) Search(ctx context.Context, boardIDs []uuid.UUID, query string) ([]model.Card, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	var cards []model.Card
	err := r.db.WithContext(ctx).
		Joins("JOIN lists ON lists.id = cards.list_id").
		Where("lists.board_id IN ?", boardIDs).
		Where("LOWER(cards.title) LIKE ? OR LOWER(cards.description) LIKE ?", pattern, pattern).
		Find(&cards).Error
	return cards, err
}

// HasLabel reports whether the association row already exists.
func (r *CardRepository) HasLabel(ctx context.Context, cardID, labelID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CardLabel{}).
		Where("card_id = ? AND label_id = ?", cardID, labelID).
		Count(&count).Error
	return count > 0, err
}

func (r *CardRepository) AttachLabel(ctx context.Context, cardID, labelID uuid.UUID) error {
	return r.db.WithContext(ctx).Create(&model.CardLabel{CardID: cardID, LabelID: labelID}).Error
}

func (r *CardRepository) DetachLabel(ctx context.Context, cardID, labelID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("card_id = ? AND label_id = ?", cardID, labelID).
		Delete(&model.CardLabel{}).Error
}

// LabelsForCard returns the card's labels in attachment order.
func (r *CardRepository) LabelsForCard(ctx context.Context, cardID uuid.UUID) ([]model.Label, error) {
	var labels []model.Label
	err := r.db.WithContext(ctx).
		Joins("JOIN card_labels ON card_labels.label_id = labels.id").
		Where("card_labels.card_id = ?", cardID).
		Order("card_labels.added_at").
		Find(&labels).Error
	return labels, err
}

// CardsWithLabel returns the in-scope cards bearing the label.
func (r *CardRepository) CardsWithLabel(ctx context.Context, labelID uuid.UUID, boardIDs []uuid.UUID) ([]model.Card, error) {
	var cards []model.Card
	err := r.db.WithContext(ctx).
		Joins("JOIN card_labels ON card_labels.card_id = cards.id").
		Joins("JOIN lists ON lists.id = cards.list_id").
		Where("card_labels.label_id = ?", labelID).
		Where("lists.board_id IN ?", boardIDs).
		Find(&cards).Error
	return cards, err
}

// CountWithLabel returns how many cards carry the label.
func (r *CardRepository) CountWithLabel(ctx context.Context, labelID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CardLabel{}).
		Where("label_id = ?", labelID).
		Count(&count).Error
	return count, err
}
