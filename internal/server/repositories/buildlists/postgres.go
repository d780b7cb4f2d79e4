package buildlists

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/carmodpicker/internal/common"
	"github.com/dmitrijs2005/carmodpicker/internal/dbx"
	"github.com/dmitrijs2005/carmodpicker/internal/server/models"
)

// PostgresRepository implements build list storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, bl *models.BuildList) (*models.BuildList, error) {
	query :=
		`INSERT INTO build_lists (name, description, car_id)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	if err := r.db.QueryRowContext(ctx, query, bl.Name, bl.Description, bl.CarID).Scan(&bl.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return bl, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.BuildList, error) {
	query := `SELECT id, name, description, car_id FROM build_lists WHERE id = $1`

	bl := &models.BuildList{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&bl.ID, &bl.Name, &bl.Description, &bl.CarID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return bl, nil
}

func (r *PostgresRepository) ListByCar(ctx context.Context, carID int64) ([]*models.BuildList, error) {
	query := `SELECT id, name, description, car_id FROM build_lists WHERE car_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, carID)
	if err != nil {
		return nil, fmt.Errorf("failed to select build lists: %w", err)
	}
	defer rows.Close()

	result := []*models.BuildList{}
	for rows.Next() {
		var bl models.BuildList
		if err := rows.Scan(&bl.ID, &bl.Name, &bl.Description, &bl.CarID); err != nil {
			return nil, err
		}
		result = append(result, &bl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, bl *models.BuildList) (*models.BuildList, error) {
	query :=
		`UPDATE build_lists
		 SET name = $2, description = $3, car_id = $4
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, bl.ID, bl.Name, bl.Description, bl.CarID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := dbx.ExpectOne(res); err != nil {
		return nil, err
	}
	return bl, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM build_lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOne(res)
}
