package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/devfolio-api/internal/domain/entity"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository is the credential store.
type UserRepository interface {
	// Create assigns u.ID and u.CreatedAt. Returns ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
