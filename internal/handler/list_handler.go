package handler

import (
	"net/http"

	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

type ListHandler struct {
	hierarchy *service.HierarchyService
}

func NewListHandler(hierarchy *service.HierarchyService) *ListHandler {
	return &ListHandler{hierarchy: hierarchy}
}

type CreateListRequest struct {
	Title string `json:"title" binding:"required"`
}

type UpdateListRequest struct {
	Title    *string `json:"title"`
	Position *int    `json:"position"`
}

type ListResponse struct {
	ID       string `json:"id"`
	BoardID  string `json:"board_id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

func (h *ListHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	list, err := h.hierarchy.CreateList(c.Request.Context(), boardID, userID, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ListResponse{
		ID:       list.ID.String(),
		BoardID:  list.BoardID.String(),
		Title:    list.Title,
		Position: list.Position,
	})
}

func (h *ListHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	list, err := h.hierarchy.UpdateList(c.Request.Context(), listID, userID, req.Title, req.Position)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		ID:       list.ID.String(),
		BoardID:  list.BoardID.String(),
		Title:    list.Title,
		Position: list.Position,
	})
}

func (h *ListHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.hierarchy.DeleteList(c.Request.Context(), listID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "List deleted"})
}
