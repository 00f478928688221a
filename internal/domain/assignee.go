package domain

import (
	"database/sql"
)

// Assignee is a field-personnel record. It attributes visit actions to a
// person; it is not a login credential (see Credential).
type Assignee struct {
	ID       int64  `db:"id"`
	Username string `db:"username"` // unique
	Name     string `db:"name"`
	Role     string `db:"role"` // free-form role tag ("MD", "Sales", ...)

	AreaCode  string `db:"area_code"`
	DepotCode string `db:"depot_code"`

	CreatedAt sql.NullTime `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
	SyncedAt  sql.NullTime `db:"synced_at"`
}

func (a *Assignee) ToJSON() map[string]any {
	m := map[string]any{
		"id":         a.ID,
		"username":   a.Username,
		"name":       a.Name,
		"role":       a.Role,
		"area_code":  a.AreaCode,
		"depot_code": a.DepotCode,
	}
	if a.CreatedAt.Valid {
		m["created_at"] = a.CreatedAt.Time.Format("2006-01-02 15:04:05")
	}
	if a.UpdatedAt.Valid {
		m["updated_at"] = a.UpdatedAt.Time.Format("2006-01-02 15:04:05")
	}
	if a.SyncedAt.Valid {
		m["synced_at"] = a.SyncedAt.Time.Format("2006-01-02 15:04:05")
	}
	return m
}
