package domain

import (
	"database/sql"
)

// Credential is a login record for the dashboard/mobile clients. It is
// separate from Assignee: credentials authenticate, assignees attribute
// visit actions.
type Credential struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"` // unique
	PasswordHash string `db:"password_hash"`
	AccessLevel  string `db:"access_level"` // "user" or "admin"

	CreatedAt sql.NullTime `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
}

func (c *Credential) ToJSON() map[string]any {
	m := map[string]any{
		"id":           c.ID,
		"username":     c.Username,
		"access_level": c.AccessLevel,
	}
	if c.CreatedAt.Valid {
		m["created_at"] = c.CreatedAt.Time.Format("2006-01-02 15:04:05")
	}
	if c.UpdatedAt.Valid {
		m["updated_at"] = c.UpdatedAt.Time.Format("2006-01-02 15:04:05")
	}
	return m
}
