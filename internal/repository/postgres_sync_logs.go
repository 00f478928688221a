package repository

import (
	"context"
	"database/sql"

	"fieldvisit/internal/domain"
)

type PostgresSyncLogsRepository struct {
	db *sql.DB
}

func NewPostgresSyncLogsRepository(db *sql.DB) *PostgresSyncLogsRepository {
	return &PostgresSyncLogsRepository{db: db}
}

func (r *PostgresSyncLogsRepository) Insert(ctx context.Context, log *domain.SyncLog) error {
	q := `
		INSERT INTO sync_logs (sync_type, table_name, record_count, status, message)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, q,
		log.SyncType, log.TableName, log.RecordCount, log.Status, log.Message,
	)
	return err
}

func (r *PostgresSyncLogsRepository) List(ctx context.Context, limit int) ([]*domain.SyncLog, error) {
	q := `
		SELECT id, sync_type, table_name, record_count, status, message, sync_time
		FROM sync_logs ORDER BY sync_time DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.SyncLog{}
	for rows.Next() {
		var l domain.SyncLog
		if err := rows.Scan(&l.ID, &l.SyncType, &l.TableName, &l.RecordCount, &l.Status, &l.Message, &l.SyncTime); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}
