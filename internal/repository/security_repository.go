package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-admin-console/internal/models"
)

// SecurityRepository persists user_security_settings.
type SecurityRepository struct {
	db       *sqlx.DB
	notifier Notifier
}

// NewSecurityRepository creates the repository. notifier may be nil.
func NewSecurityRepository(db *sqlx.DB, notifier Notifier) *SecurityRepository {
	return &SecurityRepository{db: db, notifier: notifier}
}

// GetSecurity returns the toggles of userID or sql.ErrNoRows.
func (r *SecurityRepository) GetSecurity(ctx context.Context, userID string) (*models.SecuritySettings, error) {
	const query = `SELECT user_id, two_factor_auth, email_notifications, session_management, login_notifications, device_tracking, updated_at FROM user_security_settings WHERE user_id = $1`
	var settings models.SecuritySettings
	if err := r.db.GetContext(ctx, &settings, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get security settings: %w", err)
	}
	return &settings, nil
}

// UpsertSecurity writes the toggles keyed on user_id.
func (r *SecurityRepository) UpsertSecurity(ctx context.Context, settings *models.SecuritySettings) error {
	if settings.UpdatedAt.IsZero() {
		settings.UpdatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO user_security_settings (user_id, two_factor_auth, email_notifications, session_management, login_notifications, device_tracking, updated_at)
VALUES (:user_id, :two_factor_auth, :email_notifications, :session_management, :login_notifications, :device_tracking, :updated_at)
ON CONFLICT (user_id) DO UPDATE SET two_factor_auth = EXCLUDED.two_factor_auth, email_notifications = EXCLUDED.email_notifications,
session_management = EXCLUDED.session_management, login_notifications = EXCLUDED.login_notifications,
device_tracking = EXCLUDED.device_tracking, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("upsert security settings: %w", err)
	}
	if r.notifier != nil {
		r.notifier.Notify(ctx, "user_security_settings")
	}
	return nil
}
