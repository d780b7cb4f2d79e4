// Package users provides persistence for user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/carmodpicker/internal/server/models"
)

// Repository stores users. Lookups return common.ErrorNotFound for missing
// rows; Create and Update return common.ErrUsernameTaken or
// common.ErrEmailTaken when a unique constraint is hit.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	SetDisabled(ctx context.Context, id int64, disabled bool) error
	Delete(ctx context.Context, id int64) error
}
