package database

import (
	"database/sql"
	"fmt"
)

// Each entity lives in its own table with no cross-table foreign keys; the
// state machine and import pipeline do their own lookups. Outlets carry the
// unique external code used as the import upsert key.
var schemas = map[string]string{
	"credentials": `
		CREATE TABLE IF NOT EXISTS credentials (
			id BIGSERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			access_level TEXT NOT NULL DEFAULT 'user',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

	"assignees": `
		CREATE TABLE IF NOT EXISTS assignees (
			id BIGSERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT '',
			area_code TEXT NOT NULL DEFAULT '',
			depot_code TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			synced_at TIMESTAMPTZ
		)`,

	"outlets": `
		CREATE TABLE IF NOT EXISTS outlets (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL,
			area_code TEXT NOT NULL DEFAULT '',
			depot_code TEXT NOT NULL DEFAULT '',
			outlet_code TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			address TEXT NOT NULL,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			synced_at TIMESTAMPTZ
		)`,

	"visit_schedules_md": `
		CREATE TABLE IF NOT EXISTS visit_schedules_md (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL,
			area_code TEXT NOT NULL DEFAULT '',
			depot_code TEXT NOT NULL DEFAULT '',
			outlet_code TEXT NOT NULL,
			outlet_name TEXT NOT NULL,
			visit_date DATE NOT NULL,
			status TEXT NOT NULL DEFAULT 'scheduled',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			synced_at TIMESTAMPTZ
		)`,

	"visit_schedules_sales": `
		CREATE TABLE IF NOT EXISTS visit_schedules_sales (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL,
			area_code TEXT NOT NULL DEFAULT '',
			depot_code TEXT NOT NULL DEFAULT '',
			outlet_code TEXT NOT NULL,
			outlet_name TEXT NOT NULL,
			visit_date DATE NOT NULL,
			status TEXT NOT NULL DEFAULT 'scheduled',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			synced_at TIMESTAMPTZ
		)`,

	"visit_actions": `
		CREATE TABLE IF NOT EXISTS visit_actions (
			id BIGSERIAL PRIMARY KEY,
			schedule_id BIGINT NOT NULL,
			role_type TEXT NOT NULL,
			username TEXT NOT NULL,
			assignee_name TEXT NOT NULL,
			area_code TEXT NOT NULL DEFAULT '',
			depot_code TEXT NOT NULL DEFAULT '',
			outlet_code TEXT NOT NULL,
			outlet_name TEXT NOT NULL,
			outlet_address TEXT NOT NULL,
			outlet_latitude DOUBLE PRECISION NOT NULL,
			outlet_longitude DOUBLE PRECISION NOT NULL,
			checkin_latitude DOUBLE PRECISION,
			checkin_longitude DOUBLE PRECISION,
			checkin_time TIMESTAMPTZ,
			checkout_latitude DOUBLE PRECISION,
			checkout_longitude DOUBLE PRECISION,
			checkout_time TIMESTAMPTZ,
			photo_before TEXT,
			photo_after TEXT,
			classification TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			synced_at TIMESTAMPTZ
		)`,

	"sync_logs": `
		CREATE TABLE IF NOT EXISTS sync_logs (
			id BIGSERIAL PRIMARY KEY,
			sync_type TEXT NOT NULL,
			table_name TEXT NOT NULL,
			record_count INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			sync_time TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
}

// Migrate creates any missing tables.
func Migrate(db *sql.DB) error {
	for name, ddl := range schemas {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("create table %s: %w", name, err)
		}
	}
	return nil
}
