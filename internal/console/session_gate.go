package console

import (
	"context"
	"net/mail"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-console/internal/models"
	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
)

// AuthProvider is the identity backend of the console.
type AuthProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context, sessionID string) error
	GetSession(ctx context.Context) (*models.Session, error)
	OnAuthStateChange(listener func(models.AuthEvent)) (unsubscribe func())
	UpdateUser(ctx context.Context, sessionID string, update models.UserUpdate) (*models.UserInfo, error)
}

const (
	minNameLength     = 2
	minPasswordLength = 6
)

// SessionGate admits only the configured administrator.
type SessionGate struct {
	provider   AuthProvider
	adminEmail string
	logger     *zap.Logger
	now        func() time.Time

	mu          sync.RWMutex
	session     *models.Session
	unsubscribe func()
}

// NewSessionGate builds a gate for adminEmail.
func NewSessionGate(provider AuthProvider, adminEmail string, logger *zap.Logger) *SessionGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionGate{
		provider:   provider,
		adminEmail: strings.TrimSpace(adminEmail),
		logger:     logger,
		now:        time.Now,
	}
}

// Load restores the current provider session and starts following auth events.
func (g *SessionGate) Load(ctx context.Context) {
	g.mu.Lock()
	if g.unsubscribe == nil {
		g.unsubscribe = g.provider.OnAuthStateChange(g.handleEvent)
	}
	g.mu.Unlock()

	session, err := g.provider.GetSession(ctx)
	if err != nil {
		g.logger.Warn("restore session failed", zap.Error(err))
		session = nil
	}
	if session != nil && !g.isAdmin(session) {
		session = nil
	}
	g.set(session)
}

// Close stops following auth events.
func (g *SessionGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unsubscribe != nil {
		g.unsubscribe()
		g.unsubscribe = nil
	}
}

func (g *SessionGate) handleEvent(ev models.AuthEvent) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch ev.Type {
	case models.AuthSignedOut:
		if g.session != nil && (ev.Session == nil || ev.Session.ID == g.session.ID) {
			g.session = nil
		}
	case models.AuthSignedIn:
		if g.session == nil && ev.Session != nil && g.isAdmin(ev.Session) {
			s := *ev.Session
			g.session = &s
		}
	case models.AuthUserUpdated:
		if g.session != nil && ev.Session != nil && ev.Session.User.ID == g.session.User.ID {
			g.session.User = ev.Session.User
		}
	}
}

// Login authenticates and admits the session only for the administrator.
func (g *SessionGate) Login(ctx context.Context, email, password string) (*models.Session, error) {
	session, err := g.provider.SignInWithPassword(ctx, strings.TrimSpace(email), password)
	if err != nil || session == nil {
		g.logger.Info("login rejected", zap.String("email", email), zap.Error(err))
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid email or password")
	}

	if !g.isAdmin(session) {
		if err := g.provider.SignOut(ctx, session.ID); err != nil {
			g.logger.Warn("sign out of non-admin session failed", zap.Error(err))
		}
		g.logger.Warn("non-admin login refused", zap.String("email", session.User.Email))
		return nil, appErrors.Clone(appErrors.ErrNotAdmin, "Only the admin can log in.")
	}

	g.set(session)
	out := *session
	return &out, nil
}

// Logout ends the session with the provider and clears local state.
func (g *SessionGate) Logout(ctx context.Context) error {
	g.mu.Lock()
	session := g.session
	g.session = nil
	g.mu.Unlock()
	if session == nil {
		return nil
	}
	if err := g.provider.SignOut(ctx, session.ID); err != nil {
		return appErrors.WrapAs(appErrors.ErrInternal, err, "sign out failed")
	}
	return nil
}

// IsAuthenticated reports whether an unexpired admin session is held.
func (g *SessionGate) IsAuthenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.activeLocked()
}

// Authorize reports whether sessionID is the held admin session.
func (g *SessionGate) Authorize(sessionID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sessionID != "" && g.activeLocked() && g.session.ID == sessionID
}

// Session returns a copy of the held session.
func (g *SessionGate) Session() *models.Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.session == nil {
		return nil
	}
	s := *g.session
	return &s
}

// User returns the authenticated identity.
func (g *SessionGate) User() *models.UserInfo {
	s := g.Session()
	if s == nil {
		return nil
	}
	return &s.User
}

// UpdateProfile applies the settings page changes to the admin account.
func (g *SessionGate) UpdateProfile(ctx context.Context, in models.ProfileUpdate) (*models.UserInfo, error) {
	session := g.Session()
	if session == nil || !g.IsAuthenticated() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "sign in first")
	}
	current := session.User

	var update models.UserUpdate
	name := strings.TrimSpace(in.FullName)
	if name != "" && name != current.FullName {
		if current.NameChanged {
			return nil, appErrors.Clone(appErrors.ErrValidation, "Name can only be changed once")
		}
		if len([]rune(name)) < minNameLength {
			return nil, appErrors.Clone(appErrors.ErrValidation, "Name must be at least 2 characters")
		}
		update.FullName = &name
	}

	email := strings.TrimSpace(in.Email)
	if email != "" && email != current.Email {
		if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
			return nil, appErrors.Clone(appErrors.ErrValidation, "Please enter a valid email address")
		}
		if !strings.EqualFold(email, g.adminEmail) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "The admin email address is fixed by configuration")
		}
		update.Email = &email
	}

	if in.NewPassword != "" {
		if len(in.NewPassword) < minPasswordLength {
			return nil, appErrors.Clone(appErrors.ErrValidation, "New password must be at least 6 characters")
		}
		pw := in.NewPassword
		update.Password = &pw
	}

	if update.FullName == nil && update.Email == nil && update.Password == nil {
		return &current, nil
	}

	if update.Email != nil || update.Password != nil {
		if in.CurrentPassword == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "Current password is required to change email or password")
		}
		if err := g.reauthenticate(ctx, current.Email, in.CurrentPassword); err != nil {
			return nil, err
		}
	}

	info, err := g.provider.UpdateUser(ctx, session.ID, update)
	if err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrWrite, err, "Failed to update profile: "+err.Error())
	}

	g.mu.Lock()
	if g.session != nil && g.session.ID == session.ID {
		g.session.User = *info
	}
	g.mu.Unlock()
	return info, nil
}

// reauthenticate proves the current password with a throwaway sign-in.
func (g *SessionGate) reauthenticate(ctx context.Context, email, password string) error {
	probe, err := g.provider.SignInWithPassword(ctx, email, password)
	if err != nil || probe == nil {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "Current password is incorrect")
	}
	if err := g.provider.SignOut(ctx, probe.ID); err != nil {
		g.logger.Warn("sign out of verification session failed", zap.Error(err))
	}
	return nil
}

func (g *SessionGate) set(session *models.Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if session == nil {
		g.session = nil
		return
	}
	s := *session
	g.session = &s
}

func (g *SessionGate) activeLocked() bool {
	if g.session == nil || g.session.User.ID == "" {
		return false
	}
	return g.session.ExpiresAt.IsZero() || g.now().Before(g.session.ExpiresAt)
}

func (g *SessionGate) isAdmin(session *models.Session) bool {
	return g.adminEmail != "" && strings.EqualFold(strings.TrimSpace(session.User.Email), g.adminEmail)
}
