package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BoardAggregator assembles the read-side views: a full board with its
// nested lists, cards, labels, and attachments, card detail with
// checklist progress, and the flat per-resource listings.
type BoardAggregator struct {
	access      *AccessService
	users       *repository.UserRepository
	boards      *repository.BoardRepository
	members     *repository.MemberRepository
	lists       *repository.ListRepository
	cards       *repository.CardRepository
	checklists  *repository.ChecklistRepository
	labels      *repository.LabelRepository
	attachments *repository.AttachmentRepository
}

func NewBoardAggregator(
	access *AccessService,
	users *repository.UserRepository,
	boards *repository.BoardRepository,
	members *repository.MemberRepository,
	lists *repository.ListRepository,
	cards *repository.CardRepository,
	checklists *repository.ChecklistRepository,
	labels *repository.LabelRepository,
	attachments *repository.AttachmentRepository,
) *BoardAggregator {
	return &BoardAggregator{
		access:      access,
		users:       users,
		boards:      boards,
		members:     members,
		lists:       lists,
		cards:       cards,
		checklists:  checklists,
		labels:      labels,
		attachments: attachments,
	}
}

type UserRef struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type MemberView struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type LabelView struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
}

type BoardLabelView struct {
	LabelView
	CardCount int64 `json:"card_count"`
}

type AttachmentView struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	FileSize    int64     `json:"file_size"`
	MimeType    string    `json:"mime_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
	UploadedBy  UserRef   `json:"uploaded_by"`
	Icon        string    `json:"icon"`
	DownloadURL string    `json:"download_url"`
}

type ItemView struct {
	ID          uuid.UUID  `json:"id"`
	Text        string     `json:"text"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	Position    int        `json:"position"`
}

type ChecklistView struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Items          []ItemView `json:"items"`
	Progress       int        `json:"progress"`
	CompletedCount int        `json:"completed_count"`
	TotalCount     int        `json:"total_count"`
}

type CardView struct {
	ID          uuid.UUID        `json:"id"`
	ListID      uuid.UUID        `json:"list_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Position    int              `json:"position"`
	DueDate     *time.Time       `json:"due_date"`
	CreatedBy   UserRef          `json:"created_by"`
	CreatedAt   time.Time        `json:"created_at"`
	Labels      []LabelView      `json:"labels"`
	Attachments []AttachmentView `json:"attachments"`
}

type CardDetailView struct {
	CardView
	Checklists []ChecklistView `json:"checklists"`
}

type ListView struct {
	ID       uuid.UUID  `json:"id"`
	Title    string     `json:"title"`
	Position int        `json:"position"`
	Cards    []CardView `json:"cards"`
}

type BoardView struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Owner       UserRef          `json:"owner"`
	IsOwner     bool             `json:"is_owner"`
	CreatedAt   time.Time        `json:"created_at"`
	Members     []MemberView     `json:"members"`
	Lists       []ListView       `json:"lists"`
	Labels      []BoardLabelView `json:"labels"`
}

// BoardView builds the full nested view of a board. The access check
// runs before existence is revealed, so an unknown board id and a
// forbidden one are indistinguishable to the caller. Cards whose
// creator record is gone, and attachments whose uploader is gone, are
// skipped rather than failing the whole view.
func (a *BoardAggregator) BoardView(ctx context.Context, boardID, requesterID uuid.UUID) (*BoardView, error) {
	if !a.access.HasAccess(ctx, boardID, requesterID) {
		return nil, ErrAccessDenied
	}
	board, err := a.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, ErrAccessDenied
	}
	owner, err := a.users.GetByID(ctx, board.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, fmt.Errorf("board %s has no owner record", board.ID)
	}

	members, err := a.boardMembers(ctx, boardID)
	if err != nil {
		return nil, err
	}
	labels, err := a.boardLabels(ctx, boardID)
	if err != nil {
		return nil, err
	}

	lists, err := a.lists.GetByBoardID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	userCache := map[uuid.UUID]*UserRef{board.OwnerID: {ID: owner.ID, Username: owner.Username}}
	listViews := make([]ListView, 0, len(lists))
	for _, list := range lists {
		cards, err := a.cards.GetByListID(ctx, list.ID)
		if err != nil {
			return nil, err
		}
		cardViews := make([]CardView, 0, len(cards))
		for _, card := range cards {
			view, err := a.cardView(ctx, card, userCache)
			if err != nil {
				return nil, err
			}
			if view == nil {
				continue
			}
			cardViews = append(cardViews, *view)
		}
		listViews = append(listViews, ListView{
			ID:       list.ID,
			Title:    list.Title,
			Position: list.Position,
			Cards:    cardViews,
		})
	}

	return &BoardView{
		ID:          board.ID,
		Title:       board.Title,
		Description: board.Description,
		Owner:       UserRef{ID: owner.ID, Username: owner.Username},
		IsOwner:     board.OwnerID == requesterID,
		CreatedAt:   board.CreatedAt,
		Members:     members,
		Lists:       listViews,
		Labels:      labels,
	}, nil
}

// CardDetail is the card view plus its checklists with per-checklist
// progress.
func (a *BoardAggregator) CardDetail(ctx context.Context, cardID, requesterID uuid.UUID) (*CardDetailView, error) {
	card, _, err := a.authorizeCard(ctx, cardID, requesterID)
	if err != nil {
		return nil, err
	}

	userCache := map[uuid.UUID]*UserRef{}
	view, err := a.cardView(ctx, *card, userCache)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, fmt.Errorf("card %s has no creator record", card.ID)
	}

	checklists, err := a.checklists.GetByCardID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	checklistViews := make([]ChecklistView, 0, len(checklists))
	for _, checklist := range checklists {
		cv, err := a.checklistView(ctx, checklist)
		if err != nil {
			return nil, err
		}
		checklistViews = append(checklistViews, *cv)
	}

	return &CardDetailView{CardView: *view, Checklists: checklistViews}, nil
}

func (a *BoardAggregator) CardAttachments(ctx context.Context, cardID, requesterID uuid.UUID) ([]AttachmentView, error) {
	card, _, err := a.authorizeCard(ctx, cardID, requesterID)
	if err != nil {
		return nil, err
	}
	return a.attachmentViews(ctx, card.ID, map[uuid.UUID]*UserRef{})
}

func (a *BoardAggregator) CardLabels(ctx context.Context, cardID, requesterID uuid.UUID) ([]LabelView, error) {
	card, _, err := a.authorizeCard(ctx, cardID, requesterID)
	if err != nil {
		return nil, err
	}
	labels, err := a.cards.LabelsForCard(ctx, card.ID)
	if err != nil {
		return nil, err
	}
	return labelViews(labels), nil
}

func (a *BoardAggregator) CardChecklists(ctx context.Context, cardID, requesterID uuid.UUID) ([]ChecklistView, error) {
	card, _, err := a.authorizeCard(ctx, cardID, requesterID)
	if err != nil {
		return nil, err
	}
	checklists, err := a.checklists.GetByCardID(ctx, card.ID)
	if err != nil {
		return nil, err
	}
	views := make([]ChecklistView, 0, len(checklists))
	for _, checklist := range checklists {
		cv, err := a.checklistView(ctx, checklist)
		if err != nil {
			return nil, err
		}
		views = append(views, *cv)
	}
	return views, nil
}

// BoardLabels lists the board's labels with usage counts.
func (a *BoardAggregator) BoardLabels(ctx context.Context, boardID, requesterID uuid.UUID) ([]BoardLabelView, error) {
	if !a.access.HasAccess(ctx, boardID, requesterID) {
		return nil, ErrAccessDenied
	}
	return a.boardLabels(ctx, boardID)
}

// BoardMembers lists the owner first, then collaborators in join
// order.
func (a *BoardAggregator) BoardMembers(ctx context.Context, boardID, requesterID uuid.UUID) ([]MemberView, error) {
	if !a.access.HasAccess(ctx, boardID, requesterID) {
		return nil, ErrAccessDenied
	}
	board, err := a.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, ErrAccessDenied
	}
	owner, err := a.users.GetByID(ctx, board.OwnerID)
	if err != nil {
		return nil, err
	}

	views := make([]MemberView, 0, 4)
	if owner != nil {
		views = append(views, MemberView{
			UserID:   owner.ID,
			Username: owner.Username,
			Role:     model.RoleOwner,
			JoinedAt: board.CreatedAt,
		})
	}
	members, err := a.boardMembers(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return append(views, members...), nil
}

// ChecklistProgress computes a single checklist's completion summary.
func (a *BoardAggregator) ChecklistProgress(ctx context.Context, checklistID, requesterID uuid.UUID) (*ChecklistView, error) {
	checklist, err := a.checklists.GetByID(ctx, checklistID)
	if err != nil {
		return nil, err
	}
	if checklist == nil {
		return nil, ErrNotFound
	}
	boardID, err := a.access.CardBoard(ctx, checklist.CardID)
	if err != nil {
		return nil, err
	}
	if !a.access.HasAccess(ctx, boardID, requesterID) {
		return nil, ErrAccessDenied
	}
	return a.checklistView(ctx, *checklist)
}

func (a *BoardAggregator) authorizeCard(ctx context.Context, cardID, requesterID uuid.UUID) (*model.Card, uuid.UUID, error) {
	card, err := a.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	if card == nil {
		return nil, uuid.Nil, ErrNotFound
	}
	boardID, err := a.access.ListBoard(ctx, card.ListID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	if !a.access.HasAccess(ctx, boardID, requesterID) {
		return nil, uuid.Nil, ErrAccessDenied
	}
	return card, boardID, nil
}

// cardView returns nil when the card's creator record is missing.
func (a *BoardAggregator) cardView(ctx context.Context, card model.Card, cache map[uuid.UUID]*UserRef) (*CardView, error) {
	creator, err := a.userRef(ctx, card.CreatedBy, cache)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		zap.L().Warn("skipping card with missing creator", zap.String("card_id", card.ID.String()))
		return nil, nil
	}
	labels, err := a.cards.LabelsForCard(ctx, card.ID)
	if err != nil {
		return nil, err
	}
	attachments, err := a.attachmentViews(ctx, card.ID, cache)
	if err != nil {
		return nil, err
	}
	return &CardView{
		ID:          card.ID,
		ListID:      card.ListID,
		Title:       card.Title,
		Description: card.Description,
		Position:    card.Position,
		DueDate:     card.DueDate,
		CreatedBy:   *creator,
		CreatedAt:   card.CreatedAt,
		Labels:      labelViews(labels),
		Attachments: attachments,
	}, nil
}

func (a *BoardAggregator) attachmentViews(ctx context.Context, cardID uuid.UUID, cache map[uuid.UUID]*UserRef) ([]AttachmentView, error) {
	attachments, err := a.attachments.GetByCardID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	views := make([]AttachmentView, 0, len(attachments))
	for _, attachment := range attachments {
		uploader, err := a.userRef(ctx, attachment.UploadedBy, cache)
		if err != nil {
			return nil, err
		}
		if uploader == nil {
			zap.L().Warn("skipping attachment with missing uploader", zap.String("attachment_id", attachment.ID.String()))
			continue
		}
		views = append(views, AttachmentView{
			ID:          attachment.ID,
			Filename:    attachment.OriginalFilename,
			FileSize:    attachment.FileSize,
			MimeType:    attachment.MimeType,
			UploadedAt:  attachment.UploadedAt,
			UploadedBy:  *uploader,
			Icon:        FileIcon(attachment.OriginalFilename),
			DownloadURL: fmt.Sprintf("/api/attachments/%s/download", attachment.ID),
		})
	}
	return views, nil
}

func (a *BoardAggregator) checklistView(ctx context.Context, checklist model.Checklist) (*ChecklistView, error) {
	items, err := a.checklists.ItemsByChecklistID(ctx, checklist.ID)
	if err != nil {
		return nil, err
	}
	itemViews := make([]ItemView, 0, len(items))
	completed := 0
	for _, item := range items {
		if item.IsCompleted {
			completed++
		}
		itemViews = append(itemViews, ItemView{
			ID:          item.ID,
			Text:        item.Text,
			IsCompleted: item.IsCompleted,
			CompletedAt: item.CompletedAt,
			Position:    item.Position,
		})
	}
	return &ChecklistView{
		ID:             checklist.ID,
		Title:          checklist.Title,
		Items:          itemViews,
		Progress:       checklistProgress(completed, len(items)),
		CompletedCount: completed,
		TotalCount:     len(items),
	}, nil
}

// checklistProgress is the rounded completion percentage; an empty
// checklist reports 0, not a division error.
func checklistProgress(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

func (a *BoardAggregator) boardMembers(ctx context.Context, boardID uuid.UUID) ([]MemberView, error) {
	members, err := a.members.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	views := make([]MemberView, 0, len(members))
	for _, member := range members {
		views = append(views, MemberView{
			UserID:   member.UserID,
			Username: member.User.Username,
			Role:     member.Role,
			JoinedAt: member.JoinedAt,
		})
	}
	return views, nil
}

func (a *BoardAggregator) boardLabels(ctx context.Context, boardID uuid.UUID) ([]BoardLabelView, error) {
	labels, err := a.labels.GetByBoardID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	views := make([]BoardLabelView, 0, len(labels))
	for _, label := range labels {
		count, err := a.cards.CountWithLabel(ctx, label.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, BoardLabelView{
			LabelView: LabelView{ID: label.ID, Name: label.Name, Color: label.Color},
			CardCount: count,
		})
	}
	return views, nil
}

func (a *BoardAggregator) userRef(ctx context.Context, userID uuid.UUID, cache map[uuid.UUID]*UserRef) (*UserRef, error) {
	if ref, ok := cache[userID]; ok {
		return ref, nil
	}
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		cache[userID] = nil
		return nil, nil
	}
	ref := &UserRef{ID: user.ID, Username: user.Username}
	cache[userID] = ref
	return ref, nil
}

func labelViews(labels []model.Label) []LabelView {
	views := make([]LabelView, 0, len(labels))
	for _, label := range labels {
		views = append(views, LabelView{ID: label.ID, Name: label.Name, Color: label.Color})
	}
	return views
}
