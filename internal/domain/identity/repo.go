package identity

import (
	"context"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByRole(ctx context.Context, role string, limit, offset int) ([]*User, int, error)
	// Exists reports whether a user with the given id and role exists.
	// An empty role matches any role.
	Exists(ctx context.Context, id uuid.UUID, role string) (bool, error)
}

type BranchRepository interface {
	Create(ctx context.Context, b *Branch) error
	GetByID(ctx context.Context, id uuid.UUID) (*Branch, error)
	Update(ctx context.Context, b *Branch) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Branch, int, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
