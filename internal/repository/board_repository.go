package repository

import (
	"context"
	"errors"
	"strings"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BoardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) Create(ctx context.Context, board *model.Board) error {
	return r.db.WithContext(ctx).Create(board).Error
}

func (r *BoardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	var board model.Board
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&board).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &board, nil
}

func (r *BoardRepository) GetOwned(ctx context.Context, ownerID uuid.UUID) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&boards).Error
	return boards, err
}

// GetMemberOf returns boards the user collaborates on through a
// membership row (boards they own are not included).
func (r *BoardRepository) GetMemberOf(ctx context.Context, userID uuid.UUID) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).
		Joins("JOIN board_members ON board_members.board_id = boards.id").
		Where("board_members.user_id = ?", userID).
		Find(&boards).Error
	return boards, err
}

// AccessibleIDs returns the ids of every board the user owns or is a
// member of. This is the scope set for cross-board search.
func (r *BoardRepository) AccessibleIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Board{}).
		Distinct("boards.id").
		Joins("LEFT JOIN board_members ON board_members.board_id = boards.id").
		Where("boards.owner_id = ? OR board_members.user_id = ?", userID, userID).
		Pluck("boards.id", &ids).Error
	return ids, err
}

// Search finds in-scope boards whose title or description contains the
// query, case-insensitively.
func (r *BoardRepository) Search(ctx context.Context, boardIDs []uuid.UUID, query string) ([]model.Board, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	var boards []model.Board
	err := r.db.WithContext(ctx).
		Where("id IN ?", boardIDs).
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Find(&boards).Error
	return boards, err
}

func (r *BoardRepository) Update(ctx context.Context, board *model.Board) error {
	return r.db.WithContext(ctx).Save(board).Error
}

// Delete removes the board and everything reachable from it in one
// transaction, children before parents: checklist items, checklists,
// label associations, attachment records, cards, lists, labels,
// memberships, then the board row itself. Physical attachment files
// are the caller's responsibility (collect paths first).
func (r *BoardRepository) Delete(ctx context.Context, boardID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cardIDs := tx.Model(&model.Card{}).Select("cards.id").
			Joins("JOIN lists ON lists.id = cards.list_id").
			Where("lists.board_id = ?", boardID)

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
		if err := tx.Exec(
			"DELETE FROM cards WHERE list_id IN (SELECT id FROM lists WHERE board_id = ?)", boardID,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", boardID).Delete(&model.List{}).Error; err != nil {
			return err
		}
		// Associations referencing this board's labels from any card.
		if err := tx.Exec(
			"DELETE FROM card_labels WHERE label_id IN (SELECT id FROM labels WHERE board_id = ?)", boardID,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", boardID).Delete(&model.Label{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", boardID).Delete(&model.BoardMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Board{}, "id = ?", boardID).Error
	})
}
