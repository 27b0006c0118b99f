package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-admin-console/internal/models"
)

func TestGetSecurity(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSecurityRepository(db, nil)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM user_security_settings WHERE user_id = $1")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "two_factor_auth", "email_notifications", "session_management", "login_notifications", "device_tracking", "updated_at"}).
			AddRow("u1", true, false, true, true, false, now))

	settings, err := repo.GetSecurity(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, settings.TwoFactorAuth)
	assert.False(t, settings.EmailNotifications)

	mock.ExpectQuery("FROM user_security_settings").WithArgs("u2").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetSecurity(context.Background(), "u2")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertSecurity(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	notifier := &recordingNotifier{}
	repo := NewSecurityRepository(db, notifier)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id) DO UPDATE")).
		WithArgs("u1", false, true, true, true, true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := models.DefaultSecuritySettings("u1")
	s.DeviceTracking = true
	require.NoError(t, repo.UpsertSecurity(context.Background(), &s))
	assert.Equal(t, []string{"user_security_settings"}, notifier.tables)

	mock.ExpectExec("INSERT INTO user_security_settings").WillReturnError(errors.New("offline"))
	assert.Error(t, repo.UpsertSecurity(context.Background(), &s))
	assert.Len(t, notifier.tables, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
