package service

import (
	"context"
	"fmt"

	"unichat-backend/internal/domain"
)

// UserDirectory is the single lookup point for resolving a user ID to its
// profile regardless of role. Conversation display names, message sender
// names and the auth middleware all resolve through it.
type UserDirectory struct {
	users domain.UserRepository
}

func NewUserDirectory(users domain.UserRepository) *UserDirectory {
	return &UserDirectory{users: users}
}

// Resolve returns the user for the given ID, or domain.ErrNotFound.
func (d *UserDirectory) Resolve(ctx context.Context, id int64) (*domain.User, error) {
	u, err := d.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve user %d: %w", id, err)
	}
	return u, nil
}

// DisplayName resolves a user's full name, falling back to a placeholder
// when the user no longer exists (deleted accounts keep their messages).
func (d *UserDirectory) DisplayName(ctx context.Context, id int64) string {
	u, err := d.users.GetByID(ctx, id)
	if err != nil {
		return "Unknown user"
	}
	return u.FullName()
}
