package contract

import (
	"context"

	"ai-studypal-be/internal/entity"
)

// IUserRepository is the credential store. Implementations re-read the
// backing store on every call; callers must not assume multi-writer safety
// across processes.
type IUserRepository interface {
	// FindByUsername returns nil, nil when no record matches (exact,
	// case-sensitive match).
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// Create appends a new record and rewrites the store in full.
	Create(ctx context.Context, user *entity.User) error

	All(ctx context.Context) ([]*entity.User, error)
}
