package service

import (
	"context"
	"strings"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SearchService implements access-scoped search across cards, boards,
// and labels. Every query is bounded by the requester's accessible
// board set before any matching happens.
type SearchService struct {
	access     *AccessService
	users      *repository.UserRepository
	boards     *repository.BoardRepository
	lists      *repository.ListRepository
	cards      *repository.CardRepository
	checklists *repository.ChecklistRepository
	labels     *repository.LabelRepository
}

func NewSearchService(
	access *AccessService,
	users *repository.UserRepository,
	boards *repository.BoardRepository,
	lists *repository.ListRepository,
	cards *repository.CardRepository,
	checklists *repository.ChecklistRepository,
	labels *repository.LabelRepository,
) *SearchService {
	return &SearchService{
		access:     access,
		users:      users,
		boards:     boards,
		lists:      lists,
		cards:      cards,
		checklists: checklists,
		labels:     labels,
	}
}

// Highlights names the text fields that matched the query. For
// label-matched cards only Labels is set, carrying the matching label
// names.
type Highlights struct {
	Title       bool     `json:"title,omitempty"`
	Description bool     `json:"description,omitempty"`
	Name        bool     `json:"name,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

type ChecklistItemMatch struct {
	ChecklistTitle string `json:"checklist_title"`
	ItemText       string `json:"item_text"`
	IsCompleted    bool   `json:"is_completed"`
}

type BoardRef struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type ListRef struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type CardResult struct {
	Type                   string               `json:"type"`
	ID                     uuid.UUID            `json:"id"`
	Title                  string               `json:"title"`
	Description            string               `json:"description"`
	Board                  *BoardRef            `json:"board,omitempty"`
	List                   ListRef              `json:"list"`
	CreatedBy              string               `json:"created_by"`
	DueDate                *time.Time           `json:"due_date"`
	Labels                 []LabelView          `json:"labels"`
	MatchingChecklistItems []ChecklistItemMatch `json:"matching_checklist_items"`
	HighlightedFields      Highlights           `json:"highlighted_fields"`
	MatchedViaLabel        bool                 `json:"matched_via_label,omitempty"`
}

type BoardResult struct {
	Type              string     `json:"type"`
	ID                uuid.UUID  `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	IsOwner           bool       `json:"is_owner"`
	HighlightedFields Highlights `json:"highlighted_fields"`
}

type SearchResults struct {
	Cards        []CardResult  `json:"cards"`
	Boards       []BoardResult `json:"boards,omitempty"`
	TotalResults int           `json:"total_results"`
}

// Search runs the cross-board query for the user: a card text pass, a
// board pass, then a label pass whose hits are appended only for cards
// not already matched by text. An empty or whitespace query, or a user
// with no accessible boards, short-circuits to an empty result.
func (s *SearchService) Search(ctx context.Context, userID uuid.UUID, query string) (*SearchResults, error) {
	results := &SearchResults{Cards: []CardResult{}}
	query = strings.TrimSpace(query)
	if query == "" {
		return results, nil
	}

	boardIDs, err := s.boards.AccessibleIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(boardIDs) == 0 {
		return results, nil
	}

	seen := map[uuid.UUID]bool{}
	if err := s.cardTextPass(ctx, boardIDs, query, true, seen, results); err != nil {
		return nil, err
	}

	matchedBoards, err := s.boards.Search(ctx, boardIDs, query)
	if err != nil {
		return nil, err
	}
	for _, board := range matchedBoards {
		results.Boards = append(results.Boards, BoardResult{
			Type:              "board",
			ID:                board.ID,
			Title:             board.Title,
			Description:       board.Description,
			IsOwner:           board.OwnerID == userID,
			HighlightedFields: highlightsFor(board, query),
		})
	}

	if err := s.labelPass(ctx, boardIDs, query, true, seen, results); err != nil {
		return nil, err
	}

	results.TotalResults = len(results.Cards) + len(results.Boards)
	return results, nil
}

// SearchBoard is the single-board variant: same card and label passes
// scoped to one board, no board pass, and no board reference on the
// results since the scope is implied.
func (s *SearchService) SearchBoard(ctx context.Context, boardID, userID uuid.UUID, query string) (*SearchResults, error) {
	if !s.access.HasAccess(ctx, boardID, userID) {
		return nil, ErrAccessDenied
	}

	results := &SearchResults{Cards: []CardResult{}}
	query = strings.TrimSpace(query)
	if query == "" {
		return results, nil
	}

	scope := []uuid.UUID{boardID}
	seen := map[uuid.UUID]bool{}
	if err := s.cardTextPass(ctx, scope, query, false, seen, results); err != nil {
		return nil, err
	}
	if err := s.labelPass(ctx, scope, query, false, seen, results); err != nil {
		return nil, err
	}

	results.TotalResults = len(results.Cards)
	return results, nil
}

func (s *SearchService) cardTextPass(ctx context.Context, boardIDs []uuid.UUID, query string, withBoardRef bool, seen map[uuid.UUID]bool, results *SearchResults) error {
	cards, err := s.cards.Search(ctx, boardIDs, query)
	if err != nil {
		return err
	}
	for _, card := range cards {
		result, err := s.cardResult(ctx, card, withBoardRef)
		if err != nil {
			return err
		}
		if result == nil {
			continue
		}

		labels, err := s.cards.LabelsForCard(ctx, card.ID)
		if err != nil {
			return err
		}
		result.Labels = labelViews(labels)

		items, err := s.checklists.SearchItems(ctx, card.ID, query)
		if err != nil {
			return err
		}
		for _, item := range items {
			result.MatchingChecklistItems = append(result.MatchingChecklistItems, ChecklistItemMatch{
				ChecklistTitle: item.Checklist.Title,
				ItemText:       item.Text,
				IsCompleted:    item.IsCompleted,
			})
		}
		result.HighlightedFields = highlightsFor(card, query)

		seen[card.ID] = true
		results.Cards = append(results.Cards, *result)
	}
	return nil
}

// labelPass appends label-matched cards that the text pass did not
// already produce. A label hit carries only the matching label and its
// name in the highlights, never the card's full label set.
func (s *SearchService) labelPass(ctx context.Context, boardIDs []uuid.UUID, query string, withBoardRef bool, seen map[uuid.UUID]bool, results *SearchResults) error {
	matchedLabels, err := s.labels.Search(ctx, boardIDs, query)
	if err != nil {
		return err
	}
	for _, label := range matchedLabels {
		cards, err := s.cards.CardsWithLabel(ctx, label.ID, boardIDs)
		if err != nil {
			return err
		}
		for _, card := range cards {
			if seen[card.ID] {
				continue
			}
			result, err := s.cardResult(ctx, card, withBoardRef)
			if err != nil {
				return err
			}
			if result == nil {
				continue
			}
			result.Labels = []LabelView{{ID: label.ID, Name: label.Name, Color: label.Color}}
			result.HighlightedFields = Highlights{Labels: []string{label.Name}}
			result.MatchedViaLabel = true

			seen[card.ID] = true
			results.Cards = append(results.Cards, *result)
		}
	}
	return nil
}

// cardResult builds the common card shell. A card whose list, board,
// or creator record is missing is logged and skipped.
func (s *SearchService) cardResult(ctx context.Context, card model.Card, withBoardRef bool) (*CardResult, error) {
	list, err := s.lists.GetByID(ctx, card.ListID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		zap.L().Warn("skipping search hit with missing list", zap.String("card_id", card.ID.String()))
		return nil, nil
	}
	creator, err := s.users.GetByID(ctx, card.CreatedBy)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		zap.L().Warn("skipping search hit with missing creator", zap.String("card_id", card.ID.String()))
		return nil, nil
	}

	result := &CardResult{
		Type:                   "card",
		ID:                     card.ID,
		Title:                  card.Title,
		Description:            card.Description,
		List:                   ListRef{ID: list.ID, Title: list.Title},
		CreatedBy:              creator.Username,
		DueDate:                card.DueDate,
		Labels:                 []LabelView{},
		MatchingChecklistItems: []ChecklistItemMatch{},
	}
	if withBoardRef {
		board, err := s.boards.GetByID(ctx, list.BoardID)
		if err != nil {
			return nil, err
		}
		if board == nil {
			zap.L().Warn("skipping search hit with missing board", zap.String("card_id", card.ID.String()))
			return nil, nil
		}
		result.Board = &BoardRef{ID: board.ID, Title: board.Title}
	}
	return result, nil
}

// highlightsFor reports which declared text fields of the entity
// contain the query, case-insensitively.
func highlightsFor(source model.TextSource, query string) Highlights {
	q := strings.ToLower(query)
	var h Highlights
	for field, value := range source.TextFields() {
		if !strings.Contains(strings.ToLower(value), q) {
			continue
		}
		switch field {
		case "title":
			h.Title = true
		case "description":
			h.Description = true
		case "name":
			h.Name = true
		}
	}
	return h
}
