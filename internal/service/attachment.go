package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxFileSize caps uploads at 16 MiB.
const MaxFileSize = 16 << 20

var allowedExtensions = map[string]bool{
	".txt": true, ".pdf": true, ".png": true, ".jpg": true, ".jpeg": true,
	".gif": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".zip": true, ".rar": true, ".mp4": true,
	".mp3": true, ".avi": true, ".mov": true, ".wav": true,
}

// AttachmentService handles upload, download, and deletion of card
// attachments: validation and access checks here, bytes in the
// FileStore, metadata in the repository.
type AttachmentService struct {
	access      *AccessService
	cards       *repository.CardRepository
	attachments *repository.AttachmentRepository
	store       *storage.FileStore
}

func NewAttachmentService(
	access *AccessService,
	cards *repository.CardRepository,
	attachments *repository.AttachmentRepository,
	store *storage.FileStore,
) *AttachmentService {
	return &AttachmentService{
		access:      access,
		cards:       cards,
		attachments: attachments,
		store:       store,
	}
}

// Upload validates and stores a new attachment. The declared size is
// checked against MaxFileSize and the extension against the allow
// list before any bytes are written. The stored name carries a uuid
// prefix so concurrent uploads of the same filename never collide.
func (s *AttachmentService) Upload(ctx context.Context, cardID, requesterID uuid.UUID, filename string, size int64, contentType string, r io.Reader) (*model.FileAttachment, error) {
	boardID, err := s.access.CardBoard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if !s.access.HasAccess(ctx, boardID, requesterID) {
		return nil, ErrAccessDenied
	}

	filename = sanitizeFilename(filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", ErrValidation)
	}
	if size > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}

	id := uuid.New()
	storedName := hex.EncodeToString(id[:]) + "_" + filename
	path, err := s.store.Save(storedName, io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, err
	}

	attachment := &model.FileAttachment{
		ID:               id,
		CardID:           cardID,
		Filename:         storedName,
		OriginalFilename: filename,
		FilePath:         path,
		FileSize:         size,
		MimeType:         contentType,
		UploadedBy:       requesterID,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		if rmErr := s.store.Remove(path); rmErr != nil {
			zap.L().Warn("failed to remove orphaned upload", zap.String("path", path), zap.Error(rmErr))
		}
		return nil, err
	}
	return attachment, nil
}

// Download resolves the attachment for serving. A record whose file
// has disappeared from disk reports not found rather than a server
// error.
func (s *AttachmentService) Download(ctx context.Context, attachmentID, requesterID uuid.UUID) (*model.FileAttachment, error) {
	attachment, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	if attachment == nil {
		return nil, ErrNotFound
	}
	boardID, err := s.access.CardBoard(ctx, attachment.CardID)
	if err != nil {
		return nil, err
	}
	if !s.access.HasAccess(ctx, boardID, requesterID) {
		return nil, ErrAccessDenied
	}
	if !s.store.Exists(attachment.FilePath) {
		return nil, fmt.Errorf("%w: file missing from storage", ErrNotFound)
	}
	return attachment, nil
}

// Delete removes the record first, then the file. A failed file
// removal is logged and tolerated.
func (s *AttachmentService) Delete(ctx context.Context, attachmentID, requesterID uuid.UUID) error {
	attachment, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		return err
	}
	if attachment == nil {
		return ErrNotFound
	}
	boardID, err := s.access.CardBoard(ctx, attachment.CardID)
	if err != nil {
		return err
	}
	if !s.access.HasAccess(ctx, boardID, requesterID) {
		return ErrAccessDenied
	}

	if err := s.attachments.Delete(ctx, attachment.ID); err != nil {
		return err
	}
	if err := s.store.Remove(attachment.FilePath); err != nil {
		zap.L().Warn("failed to remove stored attachment file", zap.String("path", attachment.FilePath), zap.Error(err))
	}
	return nil
}

// sanitizeFilename strips any path components and keeps only safe
// characters, mirroring what the stored name may contain.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._")
}
