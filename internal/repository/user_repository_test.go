package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-admin-console/internal/models"
)

func TestFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "name_changed", "last_login", "created_at", "updated_at"}).
		AddRow("1", "thuvask001@gmail.com", "hash", "Admin", false, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, full_name, name_changed, last_login, created_at, updated_at FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("Thuvask001@gmail.com").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "Thuvask001@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, "thuvask001@gmail.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("FROM users WHERE id").WithArgs("nope").WillReturnError(sql.ErrNoRows)
	_, err := repo.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCreateSession(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO auth_sessions").WillReturnResult(sqlmock.NewResult(1, 1))

	session := &models.AuthSession{UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.CreateSession(context.Background(), session))
	assert.NotEmpty(t, session.ID)
	assert.False(t, session.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestActiveSession(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM auth_sessions WHERE revoked_at IS NULL AND expires_at > $1 ORDER BY created_at DESC LIMIT 1")).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "created_at", "revoked_at", "ip_address", "user_agent"}).
			AddRow("s1", "u1", now.Add(time.Hour), now, nil, "127.0.0.1", "curl"))

	session, err := repo.LatestActiveSession(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "s1", session.ID)
	assert.Nil(t, session.RevokedAt)
	assert.True(t, session.Active(now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeSession(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE auth_sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL")).
		WithArgs("s1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RevokeSession(context.Background(), "s1", now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfile(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET email = $1, full_name = $2, name_changed = $3, updated_at = $4 WHERE id = $5")).
		WithArgs("thuvask001@gmail.com", "Thuvarakan", true, sqlmock.AnyArg(), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &models.User{ID: "u1", Email: "thuvask001@gmail.com", FullName: "Thuvarakan", NameChanged: true}
	require.NoError(t, repo.UpdateProfile(context.Background(), user))
	assert.NoError(t, mock.ExpectationsWereMet())
}
