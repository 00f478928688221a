package repository

import (
	"context"
	"database/sql"
	"fmt"

	"fieldvisit/internal/domain"
)

type PostgresActionsRepository struct {
	db *sql.DB
}

func NewPostgresActionsRepository(db *sql.DB) *PostgresActionsRepository {
	return &PostgresActionsRepository{db: db}
}

const actionColumns = `
	id, schedule_id, role_type, username, assignee_name, area_code, depot_code,
	outlet_code, outlet_name, outlet_address, outlet_latitude, outlet_longitude,
	checkin_latitude, checkin_longitude, checkin_time,
	checkout_latitude, checkout_longitude, checkout_time,
	photo_before, photo_after, classification,
	created_at, updated_at, synced_at`

func scanAction(row interface{ Scan(...any) error }) (*domain.VisitAction, error) {
	var a domain.VisitAction
	err := row.Scan(
		&a.ID, &a.ScheduleID, &a.RoleType, &a.Username, &a.AssigneeName,
		&a.AreaCode, &a.DepotCode,
		&a.OutletCode, &a.OutletName, &a.OutletAddress,
		&a.OutletLatitude, &a.OutletLongitude,
		&a.CheckInLatitude, &a.CheckInLongitude, &a.CheckInTime,
		&a.CheckOutLatitude, &a.CheckOutLongitude, &a.CheckOutTime,
		&a.PhotoBefore, &a.PhotoAfter, &a.Classification,
		&a.CreatedAt, &a.UpdatedAt, &a.SyncedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PostgresActionsRepository) List(ctx context.Context, filters ActionFilters) ([]*domain.VisitAction, error) {
	q := `SELECT ` + actionColumns + ` FROM visit_actions WHERE 1=1`
	args := []any{}
	argIdx := 1

	if filters.Username != "" {
		q += fmt.Sprintf(" AND username = $%d", argIdx)
		args = append(args, filters.Username)
		argIdx++
	}
	if filters.Date != "" {
		q += fmt.Sprintf(" AND created_at::date = $%d::date", argIdx)
		args = append(args, filters.Date)
		argIdx++
	}
	switch filters.Completion {
	case CompletionCompleted:
		q += " AND checkout_time IS NOT NULL"
	case CompletionInProgress:
		q += " AND checkout_time IS NULL"
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.VisitAction{}
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresActionsRepository) ListRecent(ctx context.Context, limit int) ([]*domain.VisitAction, error) {
	q := `SELECT ` + actionColumns + ` FROM visit_actions ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.VisitAction{}
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresActionsRepository) Get(ctx context.Context, id int64) (*domain.VisitAction, error) {
	q := `SELECT ` + actionColumns + ` FROM visit_actions WHERE id = $1`
	a, err := scanAction(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return a, err
}

// Create writes the check-in snapshot in one statement: assignee and outlet
// identity plus check-in stamps.
func (r *PostgresActionsRepository) Create(ctx context.Context, action *domain.VisitAction) (int64, error) {
	q := `
		INSERT INTO visit_actions (
			schedule_id, role_type, username, assignee_name, area_code, depot_code,
			outlet_code, outlet_name, outlet_address, outlet_latitude, outlet_longitude,
			checkin_latitude, checkin_longitude, checkin_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, CURRENT_TIMESTAMP)
		RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		action.ScheduleID, string(action.RoleType), action.Username, action.AssigneeName,
		action.AreaCode, action.DepotCode,
		action.OutletCode, action.OutletName, action.OutletAddress,
		action.OutletLatitude, action.OutletLongitude,
		action.CheckInLatitude, action.CheckInLongitude,
	).Scan(&id)
	return id, err
}

func (r *PostgresActionsRepository) SetPhoto(ctx context.Context, id int64, slot domain.PhotoSlot, path string) error {
	column := "photo_before"
	if slot == domain.PhotoAfter {
		column = "photo_after"
	}
	q := `UPDATE visit_actions SET ` + column + ` = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	res, err := r.db.ExecContext(ctx, q, path, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresActionsRepository) SetClassification(ctx context.Context, id int64, value domain.Classification) error {
	q := `UPDATE visit_actions SET classification = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	res, err := r.db.ExecContext(ctx, q, string(value), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresActionsRepository) SetCheckOut(ctx context.Context, id int64, lat, lon float64) error {
	q := `
		UPDATE visit_actions
		SET checkout_latitude = $1, checkout_longitude = $2,
		    checkout_time = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3`
	res, err := r.db.ExecContext(ctx, q, lat, lon, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresActionsRepository) Count(ctx context.Context) (total, completed int, err error) {
	q := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE checkout_time IS NOT NULL)
		FROM visit_actions`
	err = r.db.QueryRowContext(ctx, q).Scan(&total, &completed)
	return total, completed, err
}

func (r *PostgresActionsRepository) CountByClassification(ctx context.Context) (map[string]int, error) {
	q := `
		SELECT classification, COUNT(*)
		FROM visit_actions
		WHERE classification IS NOT NULL
		GROUP BY classification`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var value string
		var n int
		if err := rows.Scan(&value, &n); err != nil {
			return nil, err
		}
		out[value] = n
	}
	return out, rows.Err()
}

func (r *PostgresActionsRepository) MarkSynced(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE visit_actions SET synced_at = CURRENT_TIMESTAMP
		WHERE synced_at IS NULL OR synced_at < updated_at`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
