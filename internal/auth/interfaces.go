package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Raman247365/Note-app/internal/user"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// TokenClaims are the claims carried by a session token.
type TokenClaims struct {
	UserID    string `json:"user_id"` // UUID stored as string in token
	Email     string `json:"email"`
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService defines the interface for session token creation and validation.
// Implementations include JWTService (HS256) and PasetoService (PASETO v4.local).
type TokenService interface {
	CreateToken(userID uuid.UUID, email string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// UserStore is the slice of the user repository the auth service needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	Create(ctx context.Context, u *user.User) (*user.User, error)
}

// PendingSignupStore holds signups awaiting OTP verification, keyed by
// normalized email. Put overwrites any prior entry for the same email.
// Consume atomically deletes and returns the entry when the code matches and
// the entry has not expired; any other outcome is ErrOTPInvalid, so that a
// second concurrent verification cannot succeed.
type PendingSignupStore interface {
	Put(ctx context.Context, email string, entry *PendingSignup) error
	Consume(ctx context.Context, email, code string) (*PendingSignup, error)
}

// Mailer dispatches OTP codes. IsConfigured reports whether an outbound
// channel exists; when it does not, the service falls back to logging the
// code in development.
type Mailer interface {
	IsConfigured() bool
	SendOTPEmail(ctx context.Context, toEmail, code string) error
}

// IdentityClaims are the verified claims extracted from a Google ID token.
type IdentityClaims struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// IdentityVerifier validates a Google-issued ID token against the expected
// audience and extracts its claims.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken, audience string) (*IdentityClaims, error)
}
