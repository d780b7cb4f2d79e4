// Package buildlists provides persistence for build lists.
package buildlists

import (
	"context"

	"github.com/dmitrijs2005/carmodpicker/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, bl *models.BuildList) (*models.BuildList, error)
	GetByID(ctx context.Context, id int64) (*models.BuildList, error)
	ListByCar(ctx context.Context, carID int64) ([]*models.BuildList, error)
	Update(ctx context.Context, bl *models.BuildList) (*models.BuildList, error)
	Delete(ctx context.Context, id int64) error
}
