package identity

import (
	"context"

	"github.com/go-chi/jwtauth/v5"

	"contesthub/internal/common"
	"contesthub/internal/common/security"
)

// JWTVerifier accepts HS256 tokens minted by security.TokenIssuer.
type JWTVerifier struct {
	auth *jwtauth.JWTAuth
}

func NewJWTVerifier(issuer *security.TokenIssuer) *JWTVerifier {
	return &JWTVerifier{auth: issuer.Auth()}
}

func (v *JWTVerifier) Verify(_ context.Context, rawToken string) (string, error) {
	if rawToken == "" {
		return "", common.ErrUnauthorized
	}
	token, err := jwtauth.VerifyToken(v.auth, rawToken)
	if err != nil || token == nil {
		return "", ErrInvalidCredential
	}
	email, err := security.GetEmailFromClaims(token.PrivateClaims())
	if err != nil {
		return "", ErrInvalidCredential
	}
	return email, nil
}
