package service

import (
	"context"

	"github.com/aibuilder/aibuilder-backend/internal/auth/domain"
	"github.com/aibuilder/aibuilder-backend/internal/storage"
)

type AuthService struct {
	users storage.UserStore
}

func NewAuthService(users storage.UserStore) *AuthService {
	return &AuthService{users: users}
}

// GetUser retrieves a user by id.
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetUser(ctx, id)
}

// SyncUser creates or refreshes the stored user from identity claims.
func (s *AuthService) SyncUser(ctx context.Context, claims *domain.Claims) (*domain.User, error) {
	return s.users.UpsertUser(ctx, claims.Upsert())
}
