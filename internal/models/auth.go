package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating the administrator.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// Session is an established sign-in as seen by the console.
type Session struct {
	ID          string    `json:"id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserInfo  `json:"user"`
}

// AuthEventType names an authentication state change.
type AuthEventType string

const (
	AuthSignedIn    AuthEventType = "SIGNED_IN"
	AuthSignedOut   AuthEventType = "SIGNED_OUT"
	AuthUserUpdated AuthEventType = "USER_UPDATED"
)

// AuthEvent is delivered to auth state listeners. Session is the session the
// event concerns.
type AuthEvent struct {
	Type    AuthEventType
	Session *Session
}

// UserUpdate changes account fields; nil fields are left untouched.
type UserUpdate struct {
	Email    *string
	Password *string
	FullName *string
}

// ProfileUpdate is the settings page payload.
type ProfileUpdate struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
