package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-admin-console/internal/models"
	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
	CreateSession(ctx context.Context, session *models.AuthSession) error
	FindSession(ctx context.Context, id string) (*models.AuthSession, error)
	LatestActiveSession(ctx context.Context, now time.Time) (*models.AuthSession, error)
	RevokeSession(ctx context.Context, id string, revokedAt time.Time) error
	RevokeUserSessions(ctx context.Context, userID, keepID string, revokedAt time.Time) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

// AuthService is the password identity provider backing the console session gate.
// Sessions are rows in auth_sessions; access tokens are HS256 JWTs whose jti is
// the session id.
type AuthService struct {
	repo   authUserRepository
	logger *zap.Logger
	config AuthConfig
	now    func() time.Time

	mu        sync.Mutex
	listeners map[uint64]func(models.AuthEvent)
	next      uint64
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Expiry <= 0 {
		config.Expiry = 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
		listeners: map[uint64]func(models.AuthEvent){},
	}
}

// EnsureAdmin creates the administrator account when it does not exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, name string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("admin email is not configured")
	}
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lookup admin: %w", err)
	}
	if password == "" {
		s.logger.Warn("admin account missing and no password configured", zap.String("email", email))
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if strings.TrimSpace(name) == "" {
		name = "Admin"
	}
	user := &models.User{Email: email, PasswordHash: string(hash), FullName: name}
	if err := s.repo.Create(ctx, user); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	s.logger.Info("admin account created", zap.String("email", email))
	return nil
}

// SignInWithPassword verifies credentials and opens a session.
func (s *AuthService) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, appErrors.WrapAs(appErrors.ErrInternal, err, "failed to fetch user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	now := s.now()
	row := &models.AuthSession{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.Expiry),
	}
	if err := s.repo.CreateSession(ctx, row); err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrInternal, err, "failed to persist session")
	}
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}

	session, err := s.issue(row, user)
	if err != nil {
		return nil, err
	}
	s.emit(models.AuthEvent{Type: models.AuthSignedIn, Session: session})
	return session, nil
}

// SignOut revokes the session. Unknown sessions are ignored.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	row, err := s.repo.FindSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.WrapAs(appErrors.ErrInternal, err, "failed to load session")
	}
	if err := s.repo.RevokeSession(ctx, row.ID, s.now()); err != nil {
		return appErrors.WrapAs(appErrors.ErrInternal, err, "failed to revoke session")
	}
	s.emit(models.AuthEvent{
		Type:    models.AuthSignedOut,
		Session: &models.Session{ID: row.ID, ExpiresAt: row.ExpiresAt, User: models.UserInfo{ID: row.UserID}},
	})
	return nil
}

// GetSession returns the newest active session, or nil when there is none.
func (s *AuthService) GetSession(ctx context.Context) (*models.Session, error) {
	row, err := s.repo.LatestActiveSession(ctx, s.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.WrapAs(appErrors.ErrInternal, err, "failed to load session")
	}
	user, err := s.repo.FindByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.WrapAs(appErrors.ErrInternal, err, "failed to load user")
	}
	return s.issue(row, user)
}

// OnAuthStateChange registers a listener for sign-in, sign-out and profile events.
// Listeners run synchronously on the goroutine that caused the event.
func (s *AuthService) OnAuthStateChange(listener func(models.AuthEvent)) func() {
	s.mu.Lock()
	s.next++
	id := s.next
	s.listeners[id] = listener
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// UpdateUser changes account fields on behalf of an active session. A password
// change ends every other session of the user.
func (s *AuthService) UpdateUser(ctx context.Context, sessionID string, update models.UserUpdate) (*models.UserInfo, error) {
	row, err := s.repo.FindSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session not found")
		}
		return nil, appErrors.WrapAs(appErrors.ErrInternal, err, "failed to load session")
	}
	now := s.now()
	if !row.Active(now) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
	}
	user, err := s.repo.FindByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.WrapAs(appErrors.ErrInternal, err, "failed to load user")
	}

	if update.Email != nil || update.FullName != nil {
		if update.Email != nil {
			user.Email = strings.TrimSpace(*update.Email)
		}
		if update.FullName != nil && *update.FullName != user.FullName {
			user.FullName = *update.FullName
			user.NameChanged = true
		}
		user.UpdatedAt = now
		if err := s.repo.UpdateProfile(ctx, user); err != nil {
			return nil, appErrors.WrapAs(appErrors.ErrInternal, err, "failed to update profile")
		}
	}

	if update.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.WrapAs(appErrors.ErrInternal, err, "failed to hash password")
		}
		if err := s.repo.UpdatePassword(ctx, user.ID, string(hash), now); err != nil {
			return nil, appErrors.WrapAs(appErrors.ErrInternal, err, "failed to update password")
		}
		if err := s.repo.RevokeUserSessions(ctx, user.ID, row.ID, now); err != nil {
			s.logger.Warn("failed to revoke sessions after password change", zap.Error(err))
		}
	}

	info := user.Info()
	s.emit(models.AuthEvent{
		Type:    models.AuthUserUpdated,
		Session: &models.Session{ID: row.ID, ExpiresAt: row.ExpiresAt, User: info},
	})
	return &info, nil
}

// ParseToken validates an access token and returns its claims.
func (s *AuthService) ParseToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrUnauthorized, err, "invalid token")
	}
	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) issue(row *models.AuthSession, user *models.User) (*models.Session, error) {
	claims := &models.JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        row.ID,
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(row.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(s.now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrInternal, err, "failed to create access token")
	}
	return &models.Session{
		ID:          row.ID,
		AccessToken: signed,
		ExpiresAt:   row.ExpiresAt,
		User:        user.Info(),
	}, nil
}

func (s *AuthService) emit(ev models.AuthEvent) {
	s.mu.Lock()
	listeners := make([]func(models.AuthEvent), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()
	for _, l := range listeners {
		l(ev)
	}
}
