package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CardHandler struct {
	hierarchy  *service.HierarchyService
	aggregator *service.BoardAggregator
}

func NewCardHandler(hierarchy *service.HierarchyService, aggregator *service.BoardAggregator) *CardHandler {
	return &CardHandler{
		hierarchy:  hierarchy,
		aggregator: aggregator,
	}
}

// NullableTime distinguishes an omitted due_date from an explicit
// null, which clears the date.
type NullableTime struct {
	Set  bool
	Time *time.Time
}

func (n *NullableTime) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Time = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	n.Time = &t
	return nil
}

type CreateCardRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type UpdateCardRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	ListID      *string      `json:"list_id"`
	Position    *int         `json:"position"`
	DueDate     NullableTime `json:"due_date"`
}

type CardResponse struct {
	ID          string     `json:"id"`
	ListID      string     `json:"list_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Position    int        `json:"position"`
	DueDate     *time.Time `json:"due_date"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

func cardResponse(card *model.Card) CardResponse {
	return CardResponse{
		ID:          card.ID.String(),
		ListID:      card.ListID.String(),
		Title:       card.Title,
		Description: card.Description,
		Position:    card.Position,
		DueDate:     card.DueDate,
		CreatedBy:   card.CreatedBy.String(),
		CreatedAt:   card.CreatedAt,
	}
}

func (h *CardHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	card, err := h.hierarchy.CreateCard(c.Request.Context(), listID, userID, req.Title, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cardResponse(card))
}

// GetByID returns the card detail view with labels, attachments, and
// checklists with progress.
func (h *CardHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.aggregator.CardDetail(c.Request.Context(), cardID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Update edits card fields and handles moves between lists on the
// same board.
func (h *CardHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	update := service.CardUpdate{
		Title:       req.Title,
		Description: req.Description,
		Position:    req.Position,
		DueDate:     req.DueDate.Time,
		DueDateSet:  req.DueDate.Set,
	}
	if req.ListID != nil {
		listID, err := uuid.Parse(*req.ListID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list ID format"})
			return
		}
		update.ListID = &listID
	}

	card, err := h.hierarchy.UpdateCard(c.Request.Context(), cardID, userID, update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cardResponse(card))
}

func (h *CardHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.hierarchy.DeleteCard(c.Request.Context(), cardID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Card deleted"})
}

// Label association

func (h *CardHandler) GetLabels(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	labels, err := h.aggregator.CardLabels(c.Request.Context(), cardID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, labels)
}

func (h *CardHandler) AddLabel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}
	labelID, ok := pathID(c, "label_id")
	if !ok {
		return
	}

	label, err := h.hierarchy.AttachLabel(c.Request.Context(), cardID, labelID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.LabelView{ID: label.ID, Name: label.Name, Color: label.Color})
}

func (h *CardHandler) RemoveLabel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}
	labelID, ok := pathID(c, "label_id")
	if !ok {
		return
	}

	if err := h.hierarchy.DetachLabel(c.Request.Context(), cardID, labelID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Label removed from card"})
}
