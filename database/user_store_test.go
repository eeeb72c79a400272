package database

import (
	"context"
	"testing"
	"time"

	"budget/apperr"
	"budget/models"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "username", "password", "email", "created_at", "updated_at"}

func TestUserStore_CreateUser(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	u := &models.User{Username: "alice", Password: "digest"}
	require.NoError(t, NewUserStore(db).CreateUser(context.Background(), u))
	assert.Equal(t, uint(1), u.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_CreateUser_Duplicate(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'alice'"})
	mock.ExpectRollback()

	err := NewUserStore(db).CreateUser(context.Background(), &models.User{Username: "alice", Password: "digest"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_FindByUsername(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `users` WHERE username = \\?").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(1, "alice", "digest", "", now, now))

	u, err := NewUserStore(db).FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, uint(1), u.ID)
	assert.Equal(t, "digest", u.Password)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_FindByUsername_NotFound(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := NewUserStore(db).FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_FindByID(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(2, "bob", "digest", "bob@example.com", now, now))

	u, err := NewUserStore(db).FindByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", u.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_UpdatePassword(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewUserStore(db).UpdatePassword(context.Background(), 1, "new-digest"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_UpdatePassword_NotFound(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := NewUserStore(db).UpdatePassword(context.Background(), 5, "x")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
