package repository_test

import (
	"context"
	"testing"

	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewUserRepository(db)
	id := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "username", "email", "hashed_password"}).
		AddRow(id.String(), "alice", "alice@example.com", "hashed")
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WithArgs(id, 1).
		WillReturnRows(rows)

	user, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewUserRepository(db)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	user, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_FindByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewUserRepository(db)
	id := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "username", "email"}).
		AddRow(id.String(), "bob", "bob@example.com")
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WithArgs("bob", 1).
		WillReturnRows(rows)

	user, err := repo.FindByUsername(context.Background(), "bob")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, id, user.ID)
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewUserRepository(db)

	user := &model.User{
		ID:             uuid.New(),
		Username:       "carol",
		Email:          "carol@example.com",
		HashedPassword: "hashed",
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "users"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Search(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "username", "email"}).
		AddRow(uuid.New().String(), "alice", "alice@example.com").
		AddRow(uuid.New().String(), "alicia", "alicia@example.com")
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE LOWER\(username\) LIKE \$1 OR LOWER\(email\) LIKE \$2`).
		WithArgs("%ali%", "%ali%", 10).
		WillReturnRows(rows)

	users, err := repo.Search(context.Background(), "Ali", 10)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
