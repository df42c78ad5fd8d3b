package handler

import (
	"net/http"

	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

type MemberHandler struct {
	hierarchy  *service.HierarchyService
	aggregator *service.BoardAggregator
}

func NewMemberHandler(hierarchy *service.HierarchyService, aggregator *service.BoardAggregator) *MemberHandler {
	return &MemberHandler{
		hierarchy:  hierarchy,
		aggregator: aggregator,
	}
}

type AddMemberRequest struct {
	Username string `json:"username" binding:"required"`
}

// List returns the owner first, then collaborators in join order.
func (h *MemberHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	members, err := h.aggregator.BoardMembers(c.Request.Context(), boardID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *MemberHandler) Add(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	member, user, err := h.hierarchy.AddMember(c.Request.Context(), boardID, userID, req.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, service.MemberView{
		UserID:   user.ID,
		Username: user.Username,
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	})
}

func (h *MemberHandler) Remove(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}
	targetID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	if err := h.hierarchy.RemoveMember(c.Request.Context(), boardID, userID, targetID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}
