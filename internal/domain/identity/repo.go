package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/heartguard/heartguard/pkg/pagination"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, page pagination.Params) ([]*User, int, error)
	Update(ctx context.Context, u *User) error
}
