package handler

import (
	"net/http"

	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

type LabelHandler struct {
	hierarchy  *service.HierarchyService
	aggregator *service.BoardAggregator
}

func NewLabelHandler(hierarchy *service.HierarchyService, aggregator *service.BoardAggregator) *LabelHandler {
	return &LabelHandler{
		hierarchy:  hierarchy,
		aggregator: aggregator,
	}
}

type CreateLabelRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

type UpdateLabelRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// GetByBoard lists the board's labels with usage counts.
func (h *LabelHandler) GetByBoard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	labels, err := h.aggregator.BoardLabels(c.Request.Context(), boardID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, labels)
}

func (h *LabelHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	label, err := h.hierarchy.CreateLabel(c.Request.Context(), boardID, userID, req.Name, req.Color)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.LabelView{ID: label.ID, Name: label.Name, Color: label.Color})
}

func (h *LabelHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	labelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	label, err := h.hierarchy.UpdateLabel(c.Request.Context(), labelID, userID, req.Name, req.Color)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.LabelView{ID: label.ID, Name: label.Name, Color: label.Color})
}

func (h *LabelHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	labelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.hierarchy.DeleteLabel(c.Request.Context(), labelID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Label deleted"})
}
