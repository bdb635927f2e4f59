package security

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer mints HS256 identity tokens for the jwt identity provider.
type TokenIssuer struct {
	auth *jwtauth.JWTAuth
	exp  time.Duration
}

func NewTokenIssuer(key []byte, exp time.Duration) *TokenIssuer {
	return &TokenIssuer{auth: jwtauth.New("HS256", key, nil), exp: exp}
}

// Auth exposes the signer so verifiers can share the key.
func (i *TokenIssuer) Auth() *jwtauth.JWTAuth {
	return i.auth
}

func (i *TokenIssuer) GenerateToken(email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"email": email,
		"exp":   now.Add(i.exp).Unix(),
		"iat":   now.Unix(),
	}
	_, tokenString, err := i.auth.Encode(claims)
	return tokenString, err
}

func GetEmailFromClaims(claims map[string]interface{}) (string, error) {
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", errors.New("email claim is missing or not a string")
	}
	return email, nil
}
