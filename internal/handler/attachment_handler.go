package handler

import (
	"net/http"

	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

type AttachmentHandler struct {
	attachments *service.AttachmentService
	aggregator  *service.BoardAggregator
}

func NewAttachmentHandler(attachments *service.AttachmentService, aggregator *service.BoardAggregator) *AttachmentHandler {
	return &AttachmentHandler{
		attachments: attachments,
		aggregator:  aggregator,
	}
}

// Upload accepts a multipart form with a "file" part and stores it as
// a card attachment.
func (h *AttachmentHandler) Upload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()

	attachment, err := h.attachments.Upload(
		c.Request.Context(),
		cardID,
		userID,
		fileHeader.Filename,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":           attachment.ID,
		"filename":     attachment.OriginalFilename,
		"file_size":    attachment.FileSize,
		"mime_type":    attachment.MimeType,
		"uploaded_at":  attachment.UploadedAt,
		"icon":         service.FileIcon(attachment.OriginalFilename),
		"download_url": "/api/attachments/" + attachment.ID.String() + "/download",
	})
}

func (h *AttachmentHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	attachments, err := h.aggregator.CardAttachments(c.Request.Context(), cardID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attachments)
}

// Download streams the stored file under its original name.
func (h *AttachmentHandler) Download(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	attachmentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	attachment, err := h.attachments.Download(c.Request.Context(), attachmentID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(attachment.FilePath, attachment.OriginalFilename)
}

func (h *AttachmentHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	attachmentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.attachments.Delete(c.Request.Context(), attachmentID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attachment deleted"})
}
