package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/aibuilder/aibuilder-backend/config"
	"github.com/aibuilder/aibuilder-backend/internal/auth/domain"
)

// TokenVerifier turns a bearer token into identity claims.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, token string) (*domain.Claims, error)
}

type FirebaseVerifier struct {
	client *fbauth.Client
}

// InitializeFirebase initializes the Firebase Admin SDK and returns a verifier for ID tokens.
func InitializeFirebase(ctx context.Context, cfg *config.FirebaseConfig) (*FirebaseVerifier, error) {
	if cfg.CredentialsPath == "" {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required")
	}

	opt := option.WithCredentialsFile(cfg.CredentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Auth client: %w", err)
	}

	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) VerifyIDToken(ctx context.Context, token string) (*domain.Claims, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return claimsFromToken(decoded), nil
}

func claimsFromToken(t *fbauth.Token) *domain.Claims {
	claims := &domain.Claims{Sub: t.UID}
	if email, ok := t.Claims["email"].(string); ok {
		claims.Email = email
	}
	if picture, ok := t.Claims["picture"].(string); ok {
		claims.ProfileImageURL = picture
	}
	if name, ok := t.Claims["name"].(string); ok {
		claims.SplitName(name)
	}
	return claims
}
