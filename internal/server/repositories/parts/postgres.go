package parts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/carmodpicker/internal/common"
	"github.com/dmitrijs2005/carmodpicker/internal/dbx"
	"github.com/dmitrijs2005/carmodpicker/internal/server/models"
)

const partColumns = `id, name, part_type, part_number, manufacturer, description, price, build_list_id`

// PostgresRepository implements part storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanPart(row interface{ Scan(...any) error }) (*models.Part, error) {
	p := &models.Part{}
	err := row.Scan(&p.ID, &p.Name, &p.PartType, &p.PartNumber, &p.Manufacturer,
		&p.Description, &p.Price, &p.BuildListID)
	return p, err
}

func (r *PostgresRepository) Create(ctx context.Context, part *models.Part) (*models.Part, error) {
	query :=
		`INSERT INTO parts (name, part_type, part_number, manufacturer, description, price, build_list_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		part.Name, part.PartType, part.PartNumber, part.Manufacturer,
		part.Description, part.Price, part.BuildListID).Scan(&part.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return part, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Part, error) {
	query := `SELECT ` + partColumns + ` FROM parts WHERE id = $1`

	p, err := scanPart(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListByBuildList(ctx context.Context, buildListID int64) ([]*models.Part, error) {
	query := `SELECT ` + partColumns + ` FROM parts WHERE build_list_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, buildListID)
	if err != nil {
		return nil, fmt.Errorf("failed to select parts: %w", err)
	}
	defer rows.Close()

	result := []*models.Part{}
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, part *models.Part) (*models.Part, error) {
	query :=
		`UPDATE parts
		 SET name = $2, part_type = $3, part_number = $4, manufacturer = $5,
		     description = $6, price = $7, build_list_id = $8
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		part.ID, part.Name, part.PartType, part.PartNumber, part.Manufacturer,
		part.Description, part.Price, part.BuildListID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := dbx.ExpectOne(res); err != nil {
		return nil, err
	}
	return part, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM parts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOne(res)
}
