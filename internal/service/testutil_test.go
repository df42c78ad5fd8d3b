package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/service"
	"taskboard/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the whole service stack against an in-memory sqlite
// database, one per test.
type testEnv struct {
	db          *gorm.DB
	users       *repository.UserRepository
	boards      *repository.BoardRepository
	members     *repository.MemberRepository
	lists       *repository.ListRepository
	cards       *repository.CardRepository
	checklists  *repository.ChecklistRepository
	labels      *repository.LabelRepository
	attachments *repository.AttachmentRepository
	store       *storage.FileStore

	access     *service.AccessService
	hierarchy  *service.HierarchyService
	aggregator *service.BoardAggregator
	search     *service.SearchService
	files      *service.AttachmentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Board{},
		&model.BoardMember{},
		&model.List{},
		&model.Card{},
		&model.Label{},
		&model.CardLabel{},
		&model.Checklist{},
		&model.ChecklistItem{},
		&model.FileAttachment{},
	))

	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	env := &testEnv{
		db:          db,
		users:       repository.NewUserRepository(db),
		boards:      repository.NewBoardRepository(db),
		members:     repository.NewMemberRepository(db),
		lists:       repository.NewListRepository(db),
		cards:       repository.NewCardRepository(db),
		checklists:  repository.NewChecklistRepository(db),
		labels:      repository.NewLabelRepository(db),
		attachments: repository.NewAttachmentRepository(db),
		store:       store,
	}
	env.access = service.NewAccessService(env.boards, env.members, env.lists, env.cards, env.checklists, env.attachments, env.labels)
	env.hierarchy = service.NewHierarchyService(env.access, env.users, env.boards, env.members, env.lists, env.cards, env.checklists, env.labels, env.attachments, store)
	env.aggregator = service.NewBoardAggregator(env.access, env.users, env.boards, env.members, env.lists, env.cards, env.checklists, env.labels, env.attachments)
	env.search = service.NewSearchService(env.access, env.users, env.boards, env.lists, env.cards, env.checklists, env.labels)
	env.files = service.NewAttachmentService(env.access, env.cards, env.attachments, store)
	return env
}

func (e *testEnv) createUser(t *testing.T, username string) *model.User {
	t.Helper()
	user := &model.User{
		ID:             uuid.New(),
		Username:       username,
		Email:          username + "@example.com",
		HashedPassword: "hashed",
	}
	require.NoError(t, e.users.Create(context.Background(), user))
	return user
}

func (e *testEnv) createBoard(t *testing.T, owner *model.User, title string) *model.Board {
	t.Helper()
	board, err := e.hierarchy.CreateBoard(context.Background(), owner.ID, title, "")
	require.NoError(t, err)
	return board
}

func (e *testEnv) addMember(t *testing.T, board *model.Board, user *model.User) {
	t.Helper()
	require.NoError(t, e.members.Add(context.Background(), &model.BoardMember{
		ID:      uuid.New(),
		BoardID: board.ID,
		UserID:  user.ID,
		Role:    model.RoleMember,
	}))
}

func (e *testEnv) createList(t *testing.T, board *model.Board, owner *model.User, title string) *model.List {
	t.Helper()
	list, err := e.hierarchy.CreateList(context.Background(), board.ID, owner.ID, title)
	require.NoError(t, err)
	return list
}

func (e *testEnv) createCard(t *testing.T, list *model.List, creator *model.User, title string) *model.Card {
	t.Helper()
	card, err := e.hierarchy.CreateCard(context.Background(), list.ID, creator.ID, title, "")
	require.NoError(t, err)
	return card
}

func (e *testEnv) createLabel(t *testing.T, board *model.Board, owner *model.User, name string) *model.Label {
	t.Helper()
	label, err := e.hierarchy.CreateLabel(context.Background(), board.ID, owner.ID, name, "")
	require.NoError(t, err)
	return label
}

func (e *testEnv) createChecklist(t *testing.T, card *model.Card, user *model.User, title string) *model.Checklist {
	t.Helper()
	checklist, err := e.hierarchy.CreateChecklist(context.Background(), card.ID, user.ID, title)
	require.NoError(t, err)
	return checklist
}

func (e *testEnv) addItem(t *testing.T, checklist *model.Checklist, user *model.User, text string, completed bool) *model.ChecklistItem {
	t.Helper()
	item, err := e.hierarchy.AddChecklistItem(context.Background(), checklist.ID, user.ID, text)
	require.NoError(t, err)
	if completed {
		done := true
		item, err = e.hierarchy.UpdateChecklistItem(context.Background(), item.ID, user.ID, service.ItemUpdate{IsCompleted: &done})
		require.NoError(t, err)
	}
	return item
}

func (e *testEnv) uploadAttachment(t *testing.T, card *model.Card, user *model.User, filename, content string) *model.FileAttachment {
	t.Helper()
	attachment, err := e.files.Upload(
		context.Background(), card.ID, user.ID,
		filename, int64(len(content)), "application/octet-stream",
		strings.NewReader(content),
	)
	require.NoError(t, err)
	return attachment
}

func (e *testEnv) count(t *testing.T, value interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(value).Count(&count).Error)
	return count
}
