package console

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-console/internal/models"
	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
)

// SecurityStore persists the per-user toggles.
type SecurityStore interface {
	GetSecurity(ctx context.Context, userID string) (*models.SecuritySettings, error)
	UpsertSecurity(ctx context.Context, settings *models.SecuritySettings) error
}

// SecurityPanel holds the security toggles of the signed in user.
type SecurityPanel struct {
	store  SecurityStore
	logger *zap.Logger

	mu       sync.Mutex
	settings map[string]models.SecuritySettings
}

// NewSecurityPanel builds the panel.
func NewSecurityPanel(store SecurityStore, logger *zap.Logger) *SecurityPanel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SecurityPanel{store: store, logger: logger, settings: map[string]models.SecuritySettings{}}
}

// Load reads the toggles of userID. Missing rows and read failures yield defaults.
func (p *SecurityPanel) Load(ctx context.Context, userID string) models.SecuritySettings {
	stored, err := p.store.GetSecurity(ctx, userID)
	settings := models.DefaultSecuritySettings(userID)
	switch {
	case err == nil && stored != nil:
		settings = *stored
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		p.logger.Warn("load security settings failed", zap.String("user_id", userID), zap.Error(err))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.settings[userID] = settings
	return settings
}

// Current returns the held toggles, loading them on first use.
func (p *SecurityPanel) Current(ctx context.Context, userID string) models.SecuritySettings {
	p.mu.Lock()
	settings, ok := p.settings[userID]
	p.mu.Unlock()
	if ok {
		return settings
	}
	return p.Load(ctx, userID)
}

// Toggle sets one flag. The local value changes first and is reverted when the
// upsert fails.
func (p *SecurityPanel) Toggle(ctx context.Context, userID, name string, value bool) (models.SecuritySettings, error) {
	current := p.Current(ctx, userID)
	if current.Toggle(name) == nil {
		return current, appErrors.Clone(appErrors.ErrValidation, "unknown security setting "+name)
	}

	p.mu.Lock()
	next := p.settings[userID]
	previous := *next.Toggle(name)
	*next.Toggle(name) = value
	next.UpdatedAt = time.Now().UTC()
	p.settings[userID] = next
	p.mu.Unlock()

	if err := p.store.UpsertSecurity(ctx, &next); err != nil {
		p.logger.Warn("save security settings failed", zap.String("setting", name), zap.Error(err))
		p.mu.Lock()
		reverted := p.settings[userID]
		*reverted.Toggle(name) = previous
		p.settings[userID] = reverted
		p.mu.Unlock()
		return reverted, appErrors.WrapAs(appErrors.ErrWrite, err, "Failed to update setting: "+err.Error())
	}
	return next, nil
}

// Refresh reloads the toggles of every user seen so far.
func (p *SecurityPanel) Refresh(ctx context.Context) error {
	p.mu.Lock()
	users := make([]string, 0, len(p.settings))
	for id := range p.settings {
		users = append(users, id)
	}
	p.mu.Unlock()
	for _, id := range users {
		p.Load(ctx, id)
	}
	return nil
}
