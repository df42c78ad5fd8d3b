package handler

import (
	"net/http"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

type ChecklistHandler struct {
	hierarchy  *service.HierarchyService
	aggregator *service.BoardAggregator
}

func NewChecklistHandler(hierarchy *service.HierarchyService, aggregator *service.BoardAggregator) *ChecklistHandler {
	return &ChecklistHandler{
		hierarchy:  hierarchy,
		aggregator: aggregator,
	}
}

type CreateChecklistRequest struct {
	Title string `json:"title"`
}

type UpdateChecklistRequest struct {
	Title *string `json:"title"`
}

type CreateItemRequest struct {
	Text string `json:"text" binding:"required"`
}

type UpdateItemRequest struct {
	Text        *string `json:"text"`
	IsCompleted *bool   `json:"is_completed"`
	Position    *int    `json:"position"`
}

type ItemResponse struct {
	ID          string     `json:"id"`
	ChecklistID string     `json:"checklist_id"`
	Text        string     `json:"text"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	Position    int        `json:"position"`
}

func itemResponse(item *model.ChecklistItem) ItemResponse {
	return ItemResponse{
		ID:          item.ID.String(),
		ChecklistID: item.ChecklistID.String(),
		Text:        item.Text,
		IsCompleted: item.IsCompleted,
		CompletedAt: item.CompletedAt,
		Position:    item.Position,
	}
}

func (h *ChecklistHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CreateChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	checklist, err := h.hierarchy.CreateChecklist(c.Request.Context(), cardID, userID, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, service.ChecklistView{
		ID:    checklist.ID,
		Title: checklist.Title,
		Items: []service.ItemView{},
	})
}

// GetByCard lists the card's checklists with items and progress.
func (h *ChecklistHandler) GetByCard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	checklists, err := h.aggregator.CardChecklists(c.Request.Context(), cardID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, checklists)
}

func (h *ChecklistHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	checklistID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if _, err := h.hierarchy.UpdateChecklist(c.Request.Context(), checklistID, userID, req.Title); err != nil {
		respondError(c, err)
		return
	}

	view, err := h.aggregator.ChecklistProgress(c.Request.Context(), checklistID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *ChecklistHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	checklistID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.hierarchy.DeleteChecklist(c.Request.Context(), checklistID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Checklist deleted"})
}

func (h *ChecklistHandler) AddItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	checklistID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	item, err := h.hierarchy.AddChecklistItem(c.Request.Context(), checklistID, userID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, itemResponse(item))
}

func (h *ChecklistHandler) UpdateItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	item, err := h.hierarchy.UpdateChecklistItem(c.Request.Context(), itemID, userID, service.ItemUpdate{
		Text:        req.Text,
		IsCompleted: req.IsCompleted,
		Position:    req.Position,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemResponse(item))
}

func (h *ChecklistHandler) DeleteItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.hierarchy.DeleteChecklistItem(c.Request.Context(), itemID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Checklist item deleted"})
}
