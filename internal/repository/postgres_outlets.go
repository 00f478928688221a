package repository

import (
	"context"
	"database/sql"
	"fmt"

	"fieldvisit/internal/domain"
)

type PostgresOutletsRepository struct {
	db *sql.DB
}

func NewPostgresOutletsRepository(db *sql.DB) *PostgresOutletsRepository {
	return &PostgresOutletsRepository{db: db}
}

const outletColumns = `
	id, username, area_code, depot_code, outlet_code, name, address,
	latitude, longitude, created_at, updated_at, synced_at`

func scanOutlet(row interface{ Scan(...any) error }) (*domain.Outlet, error) {
	var o domain.Outlet
	err := row.Scan(
		&o.ID, &o.Username, &o.AreaCode, &o.DepotCode, &o.OutletCode,
		&o.Name, &o.Address, &o.Latitude, &o.Longitude,
		&o.CreatedAt, &o.UpdatedAt, &o.SyncedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PostgresOutletsRepository) List(ctx context.Context, filters OutletFilters) ([]*domain.Outlet, error) {
	q := `SELECT ` + outletColumns + ` FROM outlets WHERE 1=1`
	args := []any{}
	argIdx := 1

	if filters.Username != "" {
		q += fmt.Sprintf(" AND username = $%d", argIdx)
		args = append(args, filters.Username)
		argIdx++
	}
	if filters.DepotCode != "" {
		q += fmt.Sprintf(" AND depot_code = $%d", argIdx)
		args = append(args, filters.DepotCode)
		argIdx++
	}
	if filters.OutletCode != "" {
		q += fmt.Sprintf(" AND outlet_code = $%d", argIdx)
		args = append(args, filters.OutletCode)
		argIdx++
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Outlet{}
	for rows.Next() {
		o, err := scanOutlet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PostgresOutletsRepository) Get(ctx context.Context, id int64) (*domain.Outlet, error) {
	q := `SELECT ` + outletColumns + ` FROM outlets WHERE id = $1`
	o, err := scanOutlet(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return o, err
}

func (r *PostgresOutletsRepository) GetByCode(ctx context.Context, outletCode string) (*domain.Outlet, error) {
	q := `SELECT ` + outletColumns + ` FROM outlets WHERE outlet_code = $1`
	o, err := scanOutlet(r.db.QueryRowContext(ctx, q, outletCode))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return o, err
}

func (r *PostgresOutletsRepository) Create(ctx context.Context, outlet *domain.Outlet) (int64, error) {
	q := `
		INSERT INTO outlets (username, area_code, depot_code, outlet_code, name, address, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		outlet.Username, outlet.AreaCode, outlet.DepotCode, outlet.OutletCode,
		outlet.Name, outlet.Address, outlet.Latitude, outlet.Longitude,
	).Scan(&id)
	return id, err
}

func (r *PostgresOutletsRepository) Update(ctx context.Context, id int64, outlet *domain.Outlet) error {
	q := `
		UPDATE outlets
		SET username = $1, area_code = $2, depot_code = $3, outlet_code = $4,
		    name = $5, address = $6, latitude = $7, longitude = $8,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $9`
	res, err := r.db.ExecContext(ctx, q,
		outlet.Username, outlet.AreaCode, outlet.DepotCode, outlet.OutletCode,
		outlet.Name, outlet.Address, outlet.Latitude, outlet.Longitude, id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresOutletsRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM outlets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresOutletsRepository) Upsert(ctx context.Context, outlet *domain.Outlet) error {
	q := `
		INSERT INTO outlets (username, area_code, depot_code, outlet_code, name, address, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (outlet_code)
		DO UPDATE SET username = EXCLUDED.username,
		              area_code = EXCLUDED.area_code,
		              depot_code = EXCLUDED.depot_code,
		              name = EXCLUDED.name,
		              address = EXCLUDED.address,
		              latitude = EXCLUDED.latitude,
		              longitude = EXCLUDED.longitude,
		              updated_at = CURRENT_TIMESTAMP`
	_, err := r.db.ExecContext(ctx, q,
		outlet.Username, outlet.AreaCode, outlet.DepotCode, outlet.OutletCode,
		outlet.Name, outlet.Address, outlet.Latitude, outlet.Longitude,
	)
	return err
}

func (r *PostgresOutletsRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outlets`).Scan(&n)
	return n, err
}

func (r *PostgresOutletsRepository) MarkSynced(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE outlets SET synced_at = CURRENT_TIMESTAMP
		WHERE synced_at IS NULL OR synced_at < updated_at`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
