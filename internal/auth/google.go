package auth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// GoogleVerifier validates Google-issued ID tokens using Google's public
// signing keys. It implements IdentityVerifier.
type GoogleVerifier struct{}

func NewGoogleVerifier() *GoogleVerifier {
	return &GoogleVerifier{}
}

// Verify checks the token signature, expiry, and audience, and extracts the
// claims this service cares about.
func (v *GoogleVerifier) Verify(ctx context.Context, idTokenStr, audience string) (*IdentityClaims, error) {
	payload, err := idtoken.Validate(ctx, idTokenStr, audience)
	if err != nil {
		return nil, fmt.Errorf("failed to validate google id token: %w", err)
	}

	claims := &IdentityClaims{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		claims.Email = email
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok {
		claims.EmailVerified = verified
	}
	if name, ok := payload.Claims["name"].(string); ok {
		claims.Name = name
	}

	return claims, nil
}
