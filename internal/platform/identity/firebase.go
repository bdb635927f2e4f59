package identity

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"contesthub/internal/common"
)

// FirebaseVerifier checks Firebase ID tokens.
type FirebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier initialises the Admin SDK. An empty credentialsFile
// falls back to application default credentials.
func NewFirebaseVerifier(ctx context.Context, credentialsFile string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, rawToken string) (string, error) {
	if rawToken == "" {
		return "", common.ErrUnauthorized
	}
	token, err := v.client.VerifyIDToken(ctx, rawToken)
	if err != nil {
		log.Printf("WARN: firebase token rejected: %v", err)
		return "", ErrInvalidCredential
	}
	email, _ := token.Claims["email"].(string)
	if email == "" {
		return "", ErrInvalidCredential
	}
	return email, nil
}
