package handler

import (
	"net/http"
	"time"

	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

type BoardHandler struct {
	hierarchy  *service.HierarchyService
	aggregator *service.BoardAggregator
}

func NewBoardHandler(hierarchy *service.HierarchyService, aggregator *service.BoardAggregator) *BoardHandler {
	return &BoardHandler{
		hierarchy:  hierarchy,
		aggregator: aggregator,
	}
}

type CreateBoardRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type UpdateBoardRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type BoardSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	IsOwner     bool      `json:"is_owner"`
	CreatedAt   time.Time `json:"created_at"`
}

func (h *BoardHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	board, err := h.hierarchy.CreateBoard(c.Request.Context(), userID, req.Title, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, BoardSummary{
		ID:          board.ID.String(),
		Title:       board.Title,
		Description: board.Description,
		OwnerID:     board.OwnerID.String(),
		IsOwner:     true,
		CreatedAt:   board.CreatedAt,
	})
}

// GetAll is the dashboard listing: boards the user owns followed by
// boards shared with them.
func (h *BoardHandler) GetAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	boards, err := h.hierarchy.ListBoards(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BoardSummary, len(boards))
	for i, board := range boards {
		response[i] = BoardSummary{
			ID:          board.ID.String(),
			Title:       board.Title,
			Description: board.Description,
			OwnerID:     board.OwnerID.String(),
			IsOwner:     board.OwnerID == userID,
			CreatedAt:   board.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, response)
}

// GetByID returns the full board view with lists, cards, labels, and
// attachments nested.
func (h *BoardHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.aggregator.BoardView(c.Request.Context(), boardID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *BoardHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	board, err := h.hierarchy.UpdateBoard(c.Request.Context(), boardID, userID, req.Title, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, BoardSummary{
		ID:          board.ID.String(),
		Title:       board.Title,
		Description: board.Description,
		OwnerID:     board.OwnerID.String(),
		IsOwner:     board.OwnerID == userID,
		CreatedAt:   board.CreatedAt,
	})
}

func (h *BoardHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.hierarchy.DeleteBoard(c.Request.Context(), boardID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Board deleted"})
}
