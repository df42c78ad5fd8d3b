package service_test

import (
	"context"
	"strings"
	"testing"

	"taskboard/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload_StoresFileAndRecord(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner")
	board := env.createBoard(t, owner, "Project")
	list := env.createList(t, board, owner, "Todo")
	card := env.createCard(t, list, owner, "Task")

	attachment := env.uploadAttachment(t, card, owner, "notes.txt", "hello world")

	assert.Equal(t, "notes.txt", attachment.OriginalFilename)
	assert.NotEqual(t, attachment.OriginalFilename, attachment.Filename)
	assert.True(t, strings.HasSuffix(attachment.Filename, "_notes.txt"))
	assert.EqualValues(t, len("hello world"), attachment.FileSize)
	assert.True(t, env.store.Exists(attachment.FilePath))
}

func TestUpload_SizeLimit(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner")
	board := env.createBoard(t, owner, "Project")
	list := env.createList(t, board, owner, "Todo")
	card := env.createCard(t, list, owner, "Task")

	ctx := context.Background()

	// Exactly at the limit passes the declared-size check.
	_, err := env.files.Upload(ctx, card.ID, owner.ID, "big.zip", service.MaxFileSize, "application/zip", strings.NewReader("stub"))
	require.NoError(t, err)

	_, err = env.files.Upload(ctx, card.ID, owner.ID, "huge.zip", service.MaxFileSize+1, "application/zip", strings.NewReader("stub"))
	assert.ErrorIs(t, err, service.ErrFileTooLarge)
}

func TestUpload_ExtensionAllowList(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner")
	board := env.createBoard(t, owner, "Project")
	list := env.createList(t, board, owner, "Todo")
	card := env.createCard(t, list, owner, "Task")

	ctx := context.Background()

	_, err := env.files.Upload(ctx, card.ID, owner.ID, "malware.exe", 10, "application/octet-stream", strings.NewReader("x"))
	assert.ErrorIs(t, err, service.ErrUnsupportedFileType)

	_, err = env.files.Upload(ctx, card.ID, owner.ID, "noextension", 10, "application/octet-stream", strings.NewReader("x"))
	assert.ErrorIs(t, err, service.ErrUnsupportedFileType)
}

func TestUpload_RequiresAccess(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner")
	stranger := env.createUser(t, "stranger")
	board := env.createBoard(t, owner, "Project")
	list := env.createList(t, board, owner, "Todo")
	card := env.createCard(t, list, owner, "Task")

	_, err := env.files.Upload(context.Background(), card.ID, stranger.ID, "notes.txt", 5, "text/plain", strings.NewReader("hello"))
	assert.ErrorIs(t, err, service.ErrAccessDenied)
}

func TestDownload_MissingFileIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner")
	board := env.createBoard(t, owner, "Project")
	list := env.createList(t, board, owner, "Todo")
	card := env.createCard(t, list, owner, "Task")
	attachment := env.uploadAttachment(t, card, owner, "notes.txt", "hello")

	ctx := context.Background()

	got, err := env.files.Download(ctx, attachment.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, attachment.FilePath, got.FilePath)

	require.NoError(t, env.store.Remove(attachment.FilePath))

	_, err = env.files.Download(ctx, attachment.ID, owner.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDeleteAttachment_RemovesRecordAndFile(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner")
	board := env.createBoard(t, owner, "Project")
	list := env.createList(t, board, owner, "Todo")
	card := env.createCard(t, list, owner, "Task")
	attachment := env.uploadAttachment(t, card, owner, "notes.txt", "hello")

	ctx := context.Background()
	require.NoError(t, env.files.Delete(ctx, attachment.ID, owner.ID))

	got, err := env.attachments.GetByID(ctx, attachment.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, env.store.Exists(attachment.FilePath))
}

func TestDeleteAttachment_RequiresAccess(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner")
	stranger := env.createUser(t, "stranger")
	board := env.createBoard(t, owner, "Project")
	list := env.createList(t, board, owner, "Todo")
	card := env.createCard(t, list, owner, "Task")
	attachment := env.uploadAttachment(t, card, owner, "notes.txt", "hello")

	err := env.files.Delete(context.Background(), attachment.ID, stranger.ID)
	assert.ErrorIs(t, err, service.ErrAccessDenied)
}

func TestFileIcon(t *testing.T) {
	assert.Equal(t, "📕", service.FileIcon("report.PDF"))
	assert.Equal(t, "🖼️", service.FileIcon("photo.jpeg"))
	assert.Equal(t, "🎵", service.FileIcon("song.mp3"))
	assert.Equal(t, "📎", service.FileIcon("data.bin"))
	assert.Equal(t, "📎", service.FileIcon("noextension"))
}
