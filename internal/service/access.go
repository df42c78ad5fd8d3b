package service

import (
	"context"

	"taskboard/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccessService is the single authorization primitive. Every read or
// mutation of anything reachable from a board resolves the owning
// board id (walking the ownership chain for nested entities) and goes
// through HasAccess.
type AccessService struct {
	boards      *repository.BoardRepository
	members     *repository.MemberRepository
	lists       *repository.ListRepository
	cards       *repository.CardRepository
	checklists  *repository.ChecklistRepository
	attachments *repository.AttachmentRepository
	labels      *repository.LabelRepository
}

func NewAccessService(
	boards *repository.BoardRepository,
	members *repository.MemberRepository,
	lists *repository.ListRepository,
	cards *repository.CardRepository,
	checklists *repository.ChecklistRepository,
	attachments *repository.AttachmentRepository,
	labels *repository.LabelRepository,
) *AccessService {
	return &AccessService{
		boards:      boards,
		members:     members,
		lists:       lists,
		cards:       cards,
		checklists:  checklists,
		attachments: attachments,
		labels:      labels,
	}
}

// HasAccess reports whether the user owns the board or holds a
// membership row. It fails closed: a missing board or any lookup
// error yields false, with the error logged rather than propagated.
func (s *AccessService) HasAccess(ctx context.Context, boardID, userID uuid.UUID) bool {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		zap.L().Error("access check: board lookup failed", zap.String("board_id", boardID.String()), zap.Error(err))
		return false
	}
	if board == nil {
		return false
	}
	if board.OwnerID == userID {
		return true
	}

	member, err := s.members.Get(ctx, boardID, userID)
	if err != nil {
		zap.L().Error("access check: membership lookup failed", zap.String("board_id", boardID.String()), zap.Error(err))
		return false
	}
	return member != nil
}

// Board-id resolvers for nested entities. Each walks one step of the
// ownership chain; a broken link resolves to ErrNotFound.

func (s *AccessService) ListBoard(ctx context.Context, listID uuid.UUID) (uuid.UUID, error) {
	list, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return uuid.Nil, err
	}
	if list == nil {
		return uuid.Nil, ErrNotFound
	}
	return list.BoardID, nil
}

func (s *AccessService) CardBoard(ctx context.Context, cardID uuid.UUID) (uuid.UUID, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return uuid.Nil, err
	}
	if card == nil {
		return uuid.Nil, ErrNotFound
	}
	return s.ListBoard(ctx, card.ListID)
}

func (s *AccessService) ChecklistBoard(ctx context.Context, checklistID uuid.UUID) (uuid.UUID, error) {
	checklist, err := s.checklists.GetByID(ctx, checklistID)
	if err != nil {
		return uuid.Nil, err
	}
	if checklist == nil {
		return uuid.Nil, ErrNotFound
	}
	return s.CardBoard(ctx, checklist.CardID)
}

func (s *AccessService) ItemBoard(ctx context.Context, itemID uuid.UUID) (uuid.UUID, error) {
	item, err := s.checklists.GetItemByID(ctx, itemID)
	if err != nil {
		return uuid.Nil, err
	}
	if item == nil {
		return uuid.Nil, ErrNotFound
	}
	return s.ChecklistBoard(ctx, item.ChecklistID)
}

func (s *AccessService) AttachmentBoard(ctx context.Context, attachmentID uuid.UUID) (uuid.UUID, error) {
	attachment, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		return uuid.Nil, err
	}
	if attachment == nil {
		return uuid.Nil, ErrNotFound
	}
	return s.CardBoard(ctx, attachment.CardID)
}

func (s *AccessService) LabelBoard(ctx context.Context, labelID uuid.UUID) (uuid.UUID, error) {
	label, err := s.labels.GetByID(ctx, labelID)
	if err != nil {
		return uuid.Nil, err
	}
	if label == nil {
		return uuid.Nil, ErrNotFound
	}
	return label.BoardID, nil
}
