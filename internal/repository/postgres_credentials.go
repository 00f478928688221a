package repository

import (
	"context"
	"database/sql"

	"fieldvisit/internal/domain"
)

type PostgresCredentialsRepository struct {
	db *sql.DB
}

func NewPostgresCredentialsRepository(db *sql.DB) *PostgresCredentialsRepository {
	return &PostgresCredentialsRepository{db: db}
}

func (r *PostgresCredentialsRepository) List(ctx context.Context) ([]*domain.Credential, error) {
	q := `
		SELECT id, username, password_hash, access_level, created_at, updated_at
		FROM credentials ORDER BY username`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Credential{}
	for rows.Next() {
		var c domain.Credential
		if err := rows.Scan(&c.ID, &c.Username, &c.PasswordHash, &c.AccessLevel, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *PostgresCredentialsRepository) GetByUsername(ctx context.Context, username string) (*domain.Credential, error) {
	q := `
		SELECT id, username, password_hash, access_level, created_at, updated_at
		FROM credentials WHERE username = $1`
	var c domain.Credential
	err := r.db.QueryRowContext(ctx, q, username).Scan(
		&c.ID, &c.Username, &c.PasswordHash, &c.AccessLevel, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCredentialsRepository) Create(ctx context.Context, cred *domain.Credential) (int64, error) {
	q := `
		INSERT INTO credentials (username, password_hash, access_level)
		VALUES ($1, $2, $3)
		RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q, cred.Username, cred.PasswordHash, cred.AccessLevel).Scan(&id)
	return id, err
}

func (r *PostgresCredentialsRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
