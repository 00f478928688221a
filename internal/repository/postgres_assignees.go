package repository

import (
	"context"
	"database/sql"
	"fmt"

	"fieldvisit/internal/domain"
)

type PostgresAssigneesRepository struct {
	db *sql.DB
}

func NewPostgresAssigneesRepository(db *sql.DB) *PostgresAssigneesRepository {
	return &PostgresAssigneesRepository{db: db}
}

const assigneeColumns = `
	id, username, name, role, area_code, depot_code,
	created_at, updated_at, synced_at`

func scanAssignee(row interface{ Scan(...any) error }) (*domain.Assignee, error) {
	var a domain.Assignee
	err := row.Scan(
		&a.ID, &a.Username, &a.Name, &a.Role, &a.AreaCode, &a.DepotCode,
		&a.CreatedAt, &a.UpdatedAt, &a.SyncedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PostgresAssigneesRepository) List(ctx context.Context, filters AssigneeFilters) ([]*domain.Assignee, error) {
	q := `SELECT ` + assigneeColumns + ` FROM assignees WHERE 1=1`
	args := []any{}
	argIdx := 1

	if filters.Username != "" {
		q += fmt.Sprintf(" AND username = $%d", argIdx)
		args = append(args, filters.Username)
		argIdx++
	}
	if filters.Role != "" {
		q += fmt.Sprintf(" AND role = $%d", argIdx)
		args = append(args, filters.Role)
		argIdx++
	}
	if filters.DepotCode != "" {
		q += fmt.Sprintf(" AND depot_code = $%d", argIdx)
		args = append(args, filters.DepotCode)
		argIdx++
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Assignee{}
	for rows.Next() {
		a, err := scanAssignee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresAssigneesRepository) Get(ctx context.Context, id int64) (*domain.Assignee, error) {
	q := `SELECT ` + assigneeColumns + ` FROM assignees WHERE id = $1`
	a, err := scanAssignee(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return a, err
}

func (r *PostgresAssigneesRepository) GetByUsername(ctx context.Context, username string) (*domain.Assignee, error) {
	q := `SELECT ` + assigneeColumns + ` FROM assignees WHERE username = $1`
	a, err := scanAssignee(r.db.QueryRowContext(ctx, q, username))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return a, err
}

func (r *PostgresAssigneesRepository) Create(ctx context.Context, assignee *domain.Assignee) (int64, error) {
	q := `
		INSERT INTO assignees (username, name, role, area_code, depot_code)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		assignee.Username, assignee.Name, assignee.Role, assignee.AreaCode, assignee.DepotCode,
	).Scan(&id)
	return id, err
}

func (r *PostgresAssigneesRepository) Update(ctx context.Context, id int64, assignee *domain.Assignee) error {
	q := `
		UPDATE assignees
		SET username = $1, name = $2, role = $3, area_code = $4, depot_code = $5,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $6`
	res, err := r.db.ExecContext(ctx, q,
		assignee.Username, assignee.Name, assignee.Role, assignee.AreaCode, assignee.DepotCode, id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresAssigneesRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM assignees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresAssigneesRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assignees`).Scan(&n)
	return n, err
}

func (r *PostgresAssigneesRepository) MarkSynced(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE assignees SET synced_at = CURRENT_TIMESTAMP
		WHERE synced_at IS NULL OR synced_at < updated_at`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
