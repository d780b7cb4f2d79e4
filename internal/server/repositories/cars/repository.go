// Package cars provides persistence for cars.
package cars

import (
	"context"

	"github.com/dmitrijs2005/carmodpicker/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, car *models.Car) (*models.Car, error)
	GetByID(ctx context.Context, id int64) (*models.Car, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Car, error)
	Update(ctx context.Context, car *models.Car) (*models.Car, error)
	Delete(ctx context.Context, id int64) error
}
