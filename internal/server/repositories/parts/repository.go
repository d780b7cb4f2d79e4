// Package parts provides persistence for build list parts.
package parts

import (
	"context"

	"github.com/dmitrijs2005/carmodpicker/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, part *models.Part) (*models.Part, error)
	GetByID(ctx context.Context, id int64) (*models.Part, error)
	ListByBuildList(ctx context.Context, buildListID int64) ([]*models.Part, error)
	Update(ctx context.Context, part *models.Part) (*models.Part, error)
	Delete(ctx context.Context, id int64) error
}
