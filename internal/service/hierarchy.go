package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultLabelColor = "#0079bf"

var hexColorPattern = regexp.MustCompile(`^#([0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})$`)

// HierarchyService owns every structural mutation: creates, updates,
// moves, membership changes, label associations, and the explicit
// cascade deletes. Callers reach it only after the handler resolved
// the requester; access checks happen here against the resolved
// board.
type HierarchyService struct {
	access      *AccessService
	users       *repository.UserRepository
	boards      *repository.BoardRepository
	members     *repository.MemberRepository
	lists       *repository.ListRepository
	cards       *repository.CardRepository
	checklists  *repository.ChecklistRepository
	labels      *repository.LabelRepository
	attachments *repository.AttachmentRepository
	store       *storage.FileStore
}

func NewHierarchyService(
	access *AccessService,
	users *repository.UserRepository,
	boards *repository.BoardRepository,
	members *repository.MemberRepository,
	lists *repository.ListRepository,
	cards *repository.CardRepository,
	checklists *repository.ChecklistRepository,
	labels *repository.LabelRepository,
	attachments *repository.AttachmentRepository,
	store *storage.FileStore,
) *HierarchyService {
	return &HierarchyService{
		access:      access,
		users:       users,
		boards:      boards,
		members:     members,
		lists:       lists,
		cards:       cards,
		checklists:  checklists,
		labels:      labels,
		attachments: attachments,
		store:       store,
	}
}

// Boards

func (s *HierarchyService) CreateBoard(ctx context.Context, ownerID uuid.UUID, title, description string) (*model.Board, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: board title is required", ErrValidation)
	}
	board := &model.Board{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		OwnerID:     ownerID,
	}
	if err := s.boards.Create(ctx, board); err != nil {
		return nil, err
	}
	return board, nil
}

// ListBoards returns boards the user owns followed by boards they
// collaborate on.
func (s *HierarchyService) ListBoards(ctx context.Context, userID uuid.UUID) ([]model.Board, error) {
	owned, err := s.boards.GetOwned(ctx, userID)
	if err != nil {
		return nil, err
	}
	member, err := s.boards.GetMemberOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	return append(owned, member...), nil
}

// UpdateBoard edits board metadata. Any member may edit; only
// deletion is owner-gated.
func (s *HierarchyService) UpdateBoard(ctx context.Context, boardID, requesterID uuid.UUID, title, description *string) (*model.Board, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, ErrNotFound
	}
	if !s.access.HasAccess(ctx, boardID, requesterID) {
		return nil, ErrAccessDenied
	}

	if title != nil {
		if strings.TrimSpace(*title) == "" {
			return nil, fmt.Errorf("%w: board title cannot be empty", ErrValidation)
		}
		board.Title = *title
	}
	if description != nil {
		board.Description = *description
	}

	if err := s.boards.Update(ctx, board); err != nil {
		return nil, err
	}
	return board, nil
}

// DeleteBoard cascades to every list, card, checklist, item, label,
// association, attachment record, and membership. Only the owner may
// delete. Stored attachment files are removed after the transaction
// commits; a file that is already gone is logged and skipped.
func (s *HierarchyService) DeleteBoard(ctx context.Context, boardID, requesterID uuid.UUID) error {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return err
	}
	if board == nil {
		return ErrNotFound
	}
	if board.OwnerID != requesterID {
		return ErrAccessDenied
	}

	paths, err := s.attachments.PathsForBoard(ctx, boardID)
	if err != nil {
		return err
	}
	if err := s.boards.Delete(ctx, boardID); err != nil {
		return err
	}
	s.removeStoredFiles(paths)
	return nil
}

// Members

func (s *HierarchyService) AddMember(ctx context.Context, boardID, requesterID uuid.UUID, username string) (*model.BoardMember, *model.User, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, nil, err
	}
	if board == nil {
		return nil, nil, ErrNotFound
	}
	if board.OwnerID != requesterID {
		return nil, nil, ErrAccessDenied
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	if user.ID == board.OwnerID {
		return nil, nil, fmt.Errorf("%w: owner is always a member", ErrValidation)
	}

	existing, err := s.members.Get(ctx, boardID, user.ID)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, fmt.Errorf("%w: user is already a member of this board", ErrValidation)
	}

	member := &model.BoardMember{
		ID:      uuid.New(),
		BoardID: boardID,
		UserID:  user.ID,
		Role:    model.RoleMember,
	}
	if err := s.members.Add(ctx, member); err != nil {
		return nil, nil, err
	}
	return member, user, nil
}

// RemoveMember rejects removal of the board owner unconditionally:
// ownership is not a membership and cannot be revoked through this
// path, even if a stray member row exists for the owner's id.
func (s *HierarchyService) RemoveMember(ctx context.Context, boardID, requesterID, targetUserID uuid.UUID) error {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return err
	}
	if board == nil {
		return ErrNotFound
	}
	if board.OwnerID != requesterID {
		return ErrAccessDenied
	}
	if targetUserID == board.OwnerID {
		return ErrOwnerProtected
	}

	member, err := s.members.Get(ctx, boardID, targetUserID)
	if err != nil {
		return err
	}
	if member == nil {
		return fmt.Errorf("%w: user is not a member of this board", ErrNotFound)
	}
	return s.members.Remove(ctx, boardID, targetUserID)
}

// Lists

func (s *HierarchyService) CreateList(ctx context.Context, boardID, requesterID uuid.UUID, title string) (*model.List, error) {
	if !s.access.HasAccess(ctx, boardID, requesterID) {
		return nil, ErrAccessDenied
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: list title is required", ErrValidation)
	}
	list := &model.List{
		ID:      uuid.New(),
		BoardID: boardID,
		Title:   title,
	}
	if err := s.lists.Create(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *HierarchyService) UpdateList(ctx context.Context, listID, requesterID uuid.UUID, title *string, position *int) (*model.List, error) {
	list, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, ErrNotFound
	}
	if !s.access.HasAccess(ctx, list.BoardID, requesterID) {
		return nil, ErrAccessDenied
	}

	if title != nil {
		if strings.TrimSpace(*title) == "" {
			return nil, fmt.Errorf("%w: list title cannot be empty", ErrValidation)
		}
		list.Title = *title
	}
	if position != nil {
		list.Position = *position
	}

	if err := s.lists.Update(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *HierarchyService) DeleteList(ctx context.Context, listID, requesterID uuid.UUID) error {
	boardID, err := s.access.ListBoard(ctx, listID)
	if err != nil {
		return err
	}
	if !s.access.HasAccess(ctx, boardID, requesterID) {
		return ErrAccessDenied
	}

	paths, err := s.attachments.PathsForList(ctx, listID)
	if err != nil {
		return err
	}
	if err := s.lists.Delete(ctx, listID); err != nil {
		return err
	}
	s.removeStoredFiles(paths)
	return nil
}

// Cards

func (s *HierarchyService) CreateCard(ctx context.Context, listID, requesterID uuid.UUID, title, description string) (*model.Card, error) {
	boardID, err := s.access.ListBoard(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !s.access.HasAccess(ctx, boardID, requesterID) {
		return nil, ErrAccessDenied
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: card title is required", ErrValidation)
	}
	card := &model.Card{
		ID:          uuid.New(),
		ListID:      listID,
		Title:       title,
		Description: description,
		CreatedBy:   requesterID,
	}
	if err := s.cards.Create(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// CardUpdate carries the optional card fields of an update request.
// DueDateSet distinguishes "clear the due date" from "leave it".
type CardUpdate struct {
	Title       *string
	Description *string
	ListID      *uuid.UUID
	Position    *int
	DueDate     *time.Time
	DueDateSet  bool
}

// UpdateCard applies field updates, including moves between lists.
// A move is rejected without mutation when the target list belongs to
// a different board. Position updates are last-write-wins.
func (s *HierarchyService) UpdateCard(ctx context.Context, cardID, requesterID uuid.UUID, update CardUpdate) (*model.Card, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrNotFound
	}
	boardID, err := s.access.ListBoard(ctx, card.ListID)
	if err != nil {
		return nil, err
	}
	if !s.access.HasAccess(ctx, boardID, requesterID) {
		return nil, ErrAccessDenied
	}

	if update.Title != nil {
		if strings.TrimSpace(*update.Title) == "" {
			return nil, fmt.Errorf("%w: card title is required", ErrValidation)
		}
		card.Title = *update.Title
	}
	if update.Description != nil {
		card.Description = *update.Description
	}
	if update.ListID != nil && *update.ListID != card.ListID {
		target, err := s.lists.GetByID(ctx, *update.ListID)
		if err != nil {
			return nil, err
		}
		if target == nil {
			return nil, fmt.Errorf("%w: list", ErrNotFound)
		}
		if target.BoardID != boardID {
			return nil, ErrCrossBoardMove
		}
		card.ListID = target.ID
	}
	if update.Position != nil {
		card.Position = *update.Position
	}
	if update.DueDateSet {
		card.DueDate = update.DueDate
	}

	if err := s.cards.Update(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *HierarchyService) DeleteCard(ctx context.Context, cardID, requesterID uuid.UUID) error {
	boardID, err := s.access.CardBoard(ctx, cardID)
	if err != nil {
		return err
	}
	if !s.access.HasAccess(ctx, boardID, requesterID) {
		return ErrAccessDenied
	}

	paths, err := s.attachments.PathsForCard(ctx, cardID)
	if err != nil {
		return err
	}
	if err := s.cards.Delete(ctx, cardID); err != nil {
		return err
	}
	s.removeStoredFiles(paths)
	return nil
}

// Checklists

func (s *HierarchyService) CreateChecklist(ctx context.Context, cardID, requesterID uuid.UUID, title string) (*model.Checklist, error) {
	boardID, err := s.access.CardBoard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if !s.access.HasAccess(ctx, boardID, requesterID) {
		return nil, ErrAccessDenied
	}
	if strings.TrimSpace(title) == "" {
		title = "Checklist"
	}
	checklist := &model.Checklist{
		ID:     uuid.New(),
		CardID: cardID,
		Title:  title,
	}
	if err := s.checklists.Create(ctx, checklist); err != nil {
		return nil, err
	}
	return checklist, nil
}

func (s *HierarchyService) UpdateChecklist(ctx context.Context, checklistID, requesterID uuid.UUID, title *string) (*model.Checklist, error) {
	checklist, err := s.checklists.GetByID(ctx, checklistID)
	if err != nil {
		return nil, err
	}
	if checklist == nil {
		return nil, ErrNotFound
	}
	boardID, err := s.access.CardBoard(ctx, checklist.CardID)
	if err != nil {
		return nil, err
	}
	if !s.access.HasAccess(ctx, boardID, requesterID) {
		return nil, ErrAccessDenied
	}

	if title != nil {
		if strings.TrimSpace(*title) == "" {
			return nil, fmt.Errorf("%w: checklist title cannot be empty", ErrValidation)
		}
		checklist.Title = *title
		if err := s.checklists.Update(ctx, checklist); err != nil {
			return nil, err
		}
	}
	return checklist, nil
}

func (s *HierarchyService) DeleteChecklist(ctx context.Context, checklistID, requesterID uuid.UUID) error {
	boardID, err := s.access.ChecklistBoard(ctx, checklistID)
	if err != nil {
		return err
	}
	if !s.access.HasAccess(ctx, boardID, requesterID) {
		return ErrAccessDenied
	}
	return s.checklists.Delete(ctx, checklistID)
}

// AddChecklistItem appends the item after the current last sibling:
// position is one past the maximum, or 0 for an empty checklist, so
// the append path always produces a monotonically increasing order.
func (s *HierarchyService) AddChecklistItem(ctx context.Context, checklistID, requesterID uuid.UUID, text string) (*model.ChecklistItem, error) {
	boardID, err := s.access.ChecklistBoard(ctx, checklistID)
	if err != nil {
		return nil, err
	}
	if !s.access.HasAccess(ctx, boardID, requesterID) {
		return nil, ErrAccessDenied
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: item text is required", ErrValidation)
	}

	position, err := s.checklists.NextItemPosition(ctx, checklistID)
	if err != nil {
		return nil, err
	}
	item := &model.ChecklistItem{
		ID:          uuid.New(),
		ChecklistID: checklistID,
		Text:        text,
		Position:    position,
	}
	if err := s.checklists.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ItemUpdate carries the optional fields of a checklist-item update.
type ItemUpdate struct {
	Text        *string
	IsCompleted *bool
	Position    *int
}

// UpdateChecklistItem is the only operation with cross-field
// coupling: completing an item stamps completed_at, un-completing
// clears it.
func (s *HierarchyService) UpdateChecklistItem(ctx context.Context, itemID, requesterID uuid.UUID, update ItemUpdate) (*model.ChecklistItem, error) {
	item, err := s.checklists.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	boardID, err := s.access.ChecklistBoard(ctx, item.ChecklistID)
	if err != nil {
		return nil, err
	}
	if !s.access.HasAccess(ctx, boardID, requesterID) {
		return nil, ErrAccessDenied
	}

	if update.Text != nil {
		text := strings.TrimSpace(*update.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: item text cannot be empty", ErrValidation)
		}
		item.Text = text
	}
	if update.IsCompleted != nil {
		item.IsCompleted = *update.IsCompleted
		if item.IsCompleted {
			now := time.Now().UTC()
			item.CompletedAt = &now
		} else {
			item.CompletedAt = nil
		}
	}
	if update.Position != nil {
		item.Position = *update.Position
	}

	if err := s.checklists.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *HierarchyService) DeleteChecklistItem(ctx context.Context, itemID, requesterID uuid.UUID) error {
	boardID, err := s.access.ItemBoard(ctx, itemID)
	if err != nil {
		return err
	}
	if !s.access.HasAccess(ctx, boardID, requesterID) {
		return ErrAccessDenied
	}
	return s.checklists.DeleteItem(ctx, itemID)
}

// Labels

func (s *HierarchyService) CreateLabel(ctx context.Context, boardID, requesterID uuid.UUID, name, color string) (*model.Label, error) {
	if !s.access.HasAccess(ctx, boardID, requesterID) {
		return nil, ErrAccessDenied
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: label name is required", ErrValidation)
	}
	if color == "" {
		color = DefaultLabelColor
	}
	if !hexColorPattern.MatchString(color) {
		return nil, fmt.Errorf("%w: invalid color format", ErrValidation)
	}
	label := &model.Label{
		ID:      uuid.New(),
		BoardID: boardID,
		Name:    name,
		Color:   color,
	}
	if err := s.labels.Create(ctx, label); err != nil {
		return nil, err
	}
	return label, nil
}

func (s *HierarchyService) UpdateLabel(ctx context.Context, labelID, requesterID uuid.UUID, name, color *string) (*model.Label, error) {
	label, err := s.labels.GetByID(ctx, labelID)
	if err != nil {
		return nil, err
	}
	if label == nil {
		return nil, ErrNotFound
	}
	if !s.access.HasAccess(ctx, label.BoardID, requesterID) {
		return nil, ErrAccessDenied
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: label name cannot be empty", ErrValidation)
		}
		label.Name = trimmed
	}
	if color != nil {
		if !hexColorPattern.MatchString(*color) {
			return nil, fmt.Errorf("%w: invalid color format", ErrValidation)
		}
		label.Color = *color
	}

	if err := s.labels.Update(ctx, label); err != nil {
		return nil, err
	}
	return label, nil
}

func (s *HierarchyService) DeleteLabel(ctx context.Context, labelID, requesterID uuid.UUID) error {
	boardID, err := s.access.LabelBoard(ctx, labelID)
	if err != nil {
		return err
	}
	if !s.access.HasAccess(ctx, boardID, requesterID) {
		return ErrAccessDenied
	}
	return s.labels.Delete(ctx, labelID)
}

// AttachLabel associates a label with a card. The requester must pass
// the access check for both the card's board and the label's board;
// these are identical for any validly created label, but a mismatch
// must not slip through silently.
func (s *HierarchyService) AttachLabel(ctx context.Context, cardID, labelID, requesterID uuid.UUID) (*model.Label, error) {
	label, err := s.labels.GetByID(ctx, labelID)
	if err != nil {
		return nil, err
	}
	if label == nil {
		return nil, ErrNotFound
	}
	cardBoardID, err := s.access.CardBoard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if !s.access.HasAccess(ctx, cardBoardID, requesterID) || !s.access.HasAccess(ctx, label.BoardID, requesterID) {
		return nil, ErrAccessDenied
	}

	attached, err := s.cards.HasLabel(ctx, cardID, labelID)
	if err != nil {
		return nil, err
	}
	if attached {
		return nil, ErrDuplicateLabel
	}
	if err := s.cards.AttachLabel(ctx, cardID, labelID); err != nil {
		return nil, err
	}
	return label, nil
}

func (s *HierarchyService) DetachLabel(ctx context.Context, cardID, labelID, requesterID uuid.UUID) error {
	label, err := s.labels.GetByID(ctx, labelID)
	if err != nil {
		return err
	}
	if label == nil {
		return ErrNotFound
	}
	cardBoardID, err := s.access.CardBoard(ctx, cardID)
	if err != nil {
		return err
	}
	if !s.access.HasAccess(ctx, cardBoardID, requesterID) || !s.access.HasAccess(ctx, label.BoardID, requesterID) {
		return ErrAccessDenied
	}

	attached, err := s.cards.HasLabel(ctx, cardID, labelID)
	if err != nil {
		return err
	}
	if !attached {
		return ErrLabelNotOnCard
	}
	return s.cards.DetachLabel(ctx, cardID, labelID)
}

// removeStoredFiles deletes attachment bytes after their records are
// gone. Failures are logged and tolerated: a leftover file on disk is
// an accepted failure mode, never a reason to fail the operation.
func (s *HierarchyService) removeStoredFiles(paths []string) {
	for _, path := range paths {
		if err := s.store.Remove(path); err != nil {
			zap.L().Warn("failed to remove stored attachment file", zap.String("path", path), zap.Error(err))
		}
	}
}
