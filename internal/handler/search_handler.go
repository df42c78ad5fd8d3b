package handler

import (
	"net/http"

	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	search *service.SearchService
}

func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Global searches cards, boards, and labels across every board the
// user can access.
func (h *SearchHandler) Global(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	results, err := h.search.Search(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// Board searches within a single board.
func (h *SearchHandler) Board(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	results, err := h.search.SearchBoard(c.Request.Context(), boardID, userID, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
