package repository

import (
	"context"
	"database/sql"
	"fmt"

	"fieldvisit/internal/domain"
)

// Table names for the two schedule collections.
const (
	TableSchedulesMD    = "visit_schedules_md"
	TableSchedulesSales = "visit_schedules_sales"
)

// PostgresSchedulesRepository serves one schedule table; construct it once
// per collection. The table name is a package constant, never caller input.
type PostgresSchedulesRepository struct {
	db    *sql.DB
	table string
}

func NewPostgresSchedulesRepository(db *sql.DB, table string) *PostgresSchedulesRepository {
	return &PostgresSchedulesRepository{db: db, table: table}
}

const scheduleColumns = `
	id, username, area_code, depot_code, outlet_code, outlet_name,
	to_char(visit_date, 'YYYY-MM-DD'), status, created_at, updated_at, synced_at`

func scanSchedule(row interface{ Scan(...any) error }) (*domain.VisitSchedule, error) {
	var v domain.VisitSchedule
	err := row.Scan(
		&v.ID, &v.Username, &v.AreaCode, &v.DepotCode, &v.OutletCode,
		&v.OutletName, &v.VisitDate, &v.Status,
		&v.CreatedAt, &v.UpdatedAt, &v.SyncedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *PostgresSchedulesRepository) List(ctx context.Context, filters ScheduleFilters) ([]*domain.VisitSchedule, error) {
	q := `SELECT ` + scheduleColumns + ` FROM ` + r.table + ` WHERE 1=1`
	args := []any{}
	argIdx := 1

	if filters.Username != "" {
		q += fmt.Sprintf(" AND username = $%d", argIdx)
		args = append(args, filters.Username)
		argIdx++
	}
	if filters.VisitDate != "" {
		q += fmt.Sprintf(" AND visit_date = $%d", argIdx)
		args = append(args, filters.VisitDate)
		argIdx++
	}
	if filters.Status != "" {
		q += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filters.Status)
		argIdx++
	}
	q += " ORDER BY visit_date DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.VisitSchedule{}
	for rows.Next() {
		v, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PostgresSchedulesRepository) Get(ctx context.Context, id int64) (*domain.VisitSchedule, error) {
	q := `SELECT ` + scheduleColumns + ` FROM ` + r.table + ` WHERE id = $1`
	v, err := scanSchedule(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return v, err
}

func (r *PostgresSchedulesRepository) Create(ctx context.Context, schedule *domain.VisitSchedule) (int64, error) {
	q := `
		INSERT INTO ` + r.table + ` (username, area_code, depot_code, outlet_code, outlet_name, visit_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	status := schedule.Status
	if status == "" {
		status = domain.ScheduleStatusScheduled
	}
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		schedule.Username, schedule.AreaCode, schedule.DepotCode,
		schedule.OutletCode, schedule.OutletName, schedule.VisitDate, status,
	).Scan(&id)
	return id, err
}

func (r *PostgresSchedulesRepository) Update(ctx context.Context, id int64, schedule *domain.VisitSchedule) error {
	q := `
		UPDATE ` + r.table + `
		SET username = $1, area_code = $2, depot_code = $3, outlet_code = $4,
		    outlet_name = $5, visit_date = $6, status = $7,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $8`
	res, err := r.db.ExecContext(ctx, q,
		schedule.Username, schedule.AreaCode, schedule.DepotCode, schedule.OutletCode,
		schedule.OutletName, schedule.VisitDate, schedule.Status, id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresSchedulesRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+r.table+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresSchedulesRepository) Complete(ctx context.Context, id int64) error {
	q := `
		UPDATE ` + r.table + `
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2`
	res, err := r.db.ExecContext(ctx, q, domain.ScheduleStatusCompleted, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresSchedulesRepository) CountByStatus(ctx context.Context) (scheduled, completed int, err error) {
	q := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'scheduled'),
			COUNT(*) FILTER (WHERE status = 'completed')
		FROM ` + r.table
	err = r.db.QueryRowContext(ctx, q).Scan(&scheduled, &completed)
	return scheduled, completed, err
}

func (r *PostgresSchedulesRepository) MarkSynced(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE `+r.table+` SET synced_at = CURRENT_TIMESTAMP
		WHERE synced_at IS NULL OR synced_at < updated_at`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
