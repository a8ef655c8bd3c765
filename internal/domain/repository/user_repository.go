package repository

import (
	"context"
	"errors"

	"github.com/foundly/foundly-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no row matches the lookup key.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when an insert hits the unique
	// constraint on users.email.
	ErrDuplicateEmail = errors.New("duplicate email")
)

// UserRepository is the persistence gateway the user directory depends on.
// List and Count exclude soft-deleted rows; GetByID does not, so a
// DELETED record stays retrievable by id.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, offset, limit int) ([]entity.User, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, u *entity.User) error
	UpdateStatus(ctx context.Context, id string, status entity.UserStatus) (*entity.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, hash string) error
	SetVerified(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
