package cars

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/carmodpicker/internal/common"
	"github.com/dmitrijs2005/carmodpicker/internal/dbx"
	"github.com/dmitrijs2005/carmodpicker/internal/server/models"
)

// PostgresRepository implements car storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, car *models.Car) (*models.Car, error) {
	query :=
		`INSERT INTO cars (make, model, year, trim, vin, image_url, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		car.Make, car.Model, car.Year, car.Trim, car.VIN, car.ImageURL, car.UserID).Scan(&car.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return car, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Car, error) {
	query := `SELECT id, make, model, year, trim, vin, image_url, user_id FROM cars WHERE id = $1`

	c := &models.Car{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.Make, &c.Model, &c.Year, &c.Trim, &c.VIN, &c.ImageURL, &c.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

// ListByUser returns the user's cars ordered by id. An unknown user yields
// an empty list.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Car, error) {
	query := `SELECT id, make, model, year, trim, vin, image_url, user_id FROM cars WHERE user_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select cars: %w", err)
	}
	defer rows.Close()

	result := []*models.Car{}
	for rows.Next() {
		var c models.Car
		if err := rows.Scan(&c.ID, &c.Make, &c.Model, &c.Year, &c.Trim, &c.VIN, &c.ImageURL, &c.UserID); err != nil {
			return nil, err
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update writes the descriptive columns. user_id is never updated.
func (r *PostgresRepository) Update(ctx context.Context, car *models.Car) (*models.Car, error) {
	query :=
		`UPDATE cars
		 SET make = $2, model = $3, year = $4, trim = $5, vin = $6, image_url = $7
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		car.ID, car.Make, car.Model, car.Year, car.Trim, car.VIN, car.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := dbx.ExpectOne(res); err != nil {
		return nil, err
	}
	return car, nil
}

// Delete removes the car; its build lists and parts cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cars WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOne(res)
}
