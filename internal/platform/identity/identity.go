// Package identity verifies bearer credentials issued by an external identity
// provider and resolves them to a verified email.
package identity

import (
	"context"
	"fmt"

	"contesthub/internal/common"
	"contesthub/internal/common/security"
	"contesthub/internal/platform/config"
)

// ErrInvalidCredential is returned when a presented token fails verification.
var ErrInvalidCredential = fmt.Errorf("invalid credential: %w", common.ErrUnauthorized)

type Verifier interface {
	// Verify returns the verified email carried by rawToken.
	Verify(ctx context.Context, rawToken string) (string, error)
}

const (
	ProviderFirebase = "firebase"
	ProviderJWT      = "jwt"
)

// New builds the verifier named by cfg.IdentityProvider.
func New(ctx context.Context, cfg *config.Config) (Verifier, error) {
	switch cfg.IdentityProvider {
	case ProviderFirebase:
		return NewFirebaseVerifier(ctx, cfg.FirebaseCredentialsFile)
	case ProviderJWT:
		return NewJWTVerifier(security.NewTokenIssuer(cfg.JWTKey, cfg.JWTExp)), nil
	default:
		return nil, fmt.Errorf("unknown identity provider %q", cfg.IdentityProvider)
	}
}
