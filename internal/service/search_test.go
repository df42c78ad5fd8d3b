package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/service"
)

func TestSearch_EmptyQuery(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "user")

	results, err := env.search.Search(context.Background(), user.ID, "   ")
	require.NoError(t, err)
	assert.Empty(t, results.Cards)
	assert.Empty(t, results.Boards)
	assert.Equal(t, 0, results.TotalResults)
}

func TestSearch_NoAccessibleBoards(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner")
	loner := env.createUser(t, "loner")
	board := env.createBoard(t, owner, "Project")
	list := env.createList(t, board, owner, "Todo")
	env.createCard(t, list, owner, "deploy the fix")

	results, err := env.search.Search(context.Background(), loner.ID, "deploy")
	require.NoError(t, err)
	assert.Equal(t, 0, results.TotalResults)
}

func TestSearch_ScopedToAccessibleBoards(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner")
	other := env.createUser(t, "other")
	mine := env.createBoard(t, owner, "Mine")
	foreign := env.createBoard(t, other, "Foreign")
	myList := env.createList(t, mine, owner, "Todo")
	foreignList := env.createList(t, foreign, other, "Todo")
	visible := env.createCard(t, myList, owner, "deploy release")
	env.createCard(t, foreignList, other, "deploy secret")

	results, err := env.search.Search(context.Background(), owner.ID, "deploy")
	require.NoError(t, err)
	require.Len(t, results.Cards, 1)
	assert.Equal(t, visible.ID, results.Cards[0].ID)
}

func TestSearch_CardTextMatch(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner")
	board := env.createBoard(t, owner, "Project")
	list := env.createList(t, board, owner, "Todo")
	card := env.createCard(t, list, owner, "Deploy Release")

	results, err := env.search.Search(context.Background(), owner.ID, "deploy")
	require.NoError(t, err)
	require.Len(t, results.Cards, 1)

	got := results.Cards[0]
	assert.Equal(t, "card", got.Type)
	assert.Equal(t, card.ID, got.ID)
	require.NotNil(t, got.Board)
	assert.Equal(t, board.ID, got.Board.ID)
	assert.Equal(t, list.ID, got.List.ID)
	assert.Equal(t, owner.Username, got.CreatedBy)
	assert.True(t, got.HighlightedFields.Title)
	assert.False(t, got.HighlightedFields.Description)
	assert.False(t, got.MatchedViaLabel)
}

func TestSearch_BoardMatch(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner")
	member := env.createUser(t, "member")
	board := env.createBoard(t, owner, "Release Planning")
	env.addMember(t, board, member)

	results, err := env.search.Search(context.Background(), member.ID, "release")
	require.NoError(t, err)
	require.Len(t, results.Boards, 1)

	got := results.Boards[0]
	assert.Equal(t, "board", got.Type)
	assert.Equal(t, board.ID, got.ID)
	assert.False(t, got.IsOwner)
	assert.True(t, got.HighlightedFields.Title)
	assert.Equal(t, 1, results.TotalResults)
}

func TestSearch_LabelMatchDedupFirstWins(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner")
	board := env.createBoard(t, owner, "Project")
	list := env.createList(t, board, owner, "Todo")

	// Matches by text and carries the label; must appear once, as a
	// text hit.
	both := env.createCard(t, list, owner, "urgent rework")
	// Matches only through the label.
	labelOnly := env.createCard(t, list, owner, "quiet task")

	label := env.createLabel(t, board, owner, "urgent")
	ctx := context.Background()
	_, err := env.hierarchy.AttachLabel(ctx, both.ID, label.ID, owner.ID)
	require.NoError(t, err)
	_, err = env.hierarchy.AttachLabel(ctx, labelOnly.ID, label.ID, owner.ID)
	require.NoError(t, err)

	results, err := env.search.Search(ctx, owner.ID, "urgent")
	require.NoError(t, err)
	require.Len(t, results.Cards, 2)

	first, second := results.Cards[0], results.Cards[1]
	assert.Equal(t, both.ID, first.ID)
	assert.False(t, first.MatchedViaLabel)
	assert.True(t, first.HighlightedFields.Title)

	assert.Equal(t, labelOnly.ID, second.ID)
	assert.True(t, second.MatchedViaLabel)
	assert.Equal(t, []string{"urgent"}, second.HighlightedFields.Labels)
	require.Len(t, second.Labels, 1)
	assert.Equal(t, "urgent", second.Labels[0].Name)
	assert.Empty(t, second.MatchingChecklistItems)
}

func TestSearch_ChecklistItemMetadata(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner")
	board := env.createBoard(t, owner, "Project")
	list := env.createList(t, board, owner, "Todo")
	card := env.createCard(t, list, owner, "deploy checklist")
	checklist := env.createChecklist(t, card, owner, "Release Steps")
	env.addItem(t, checklist, owner, "deploy to staging", true)
	env.addItem(t, checklist, owner, "unrelated step", false)

	results, err := env.search.Search(context.Background(), owner.ID, "deploy")
	require.NoError(t, err)
	require.Len(t, results.Cards, 1)

	matches := results.Cards[0].MatchingChecklistItems
	require.Len(t, matches, 1)
	assert.Equal(t, "Release Steps", matches[0].ChecklistTitle)
	assert.Equal(t, "deploy to staging", matches[0].ItemText)
	assert.True(t, matches[0].IsCompleted)
}

func TestSearchBoard_ScopedAndNoBoardRef(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner")
	boardA := env.createBoard(t, owner, "A")
	boardB := env.createBoard(t, owner, "B")
	listA := env.createList(t, boardA, owner, "Todo")
	listB := env.createList(t, boardB, owner, "Todo")
	hit := env.createCard(t, listA, owner, "deploy here")
	env.createCard(t, listB, owner, "deploy there")

	results, err := env.search.SearchBoard(context.Background(), boardA.ID, owner.ID, "deploy")
	require.NoError(t, err)
	require.Len(t, results.Cards, 1)
	assert.Equal(t, hit.ID, results.Cards[0].ID)
	assert.Nil(t, results.Cards[0].Board)
	assert.Empty(t, results.Boards)
}

func TestSearchBoard_AccessDenied(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner")
	stranger := env.createUser(t, "stranger")
	board := env.createBoard(t, owner, "Project")

	_, err := env.search.SearchBoard(context.Background(), board.ID, stranger.ID, "anything")
	assert.ErrorIs(t, err, service.ErrAccessDenied)
}

func TestSearch_CaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner")
	board := env.createBoard(t, owner, "Project")
	list := env.createList(t, board, owner, "Todo")
	env.createCard(t, list, owner, "Fix THE Login Bug")

	results, err := env.search.Search(context.Background(), owner.ID, "the login")
	require.NoError(t, err)
	assert.Len(t, results.Cards, 1)
}
