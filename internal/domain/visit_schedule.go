package domain

import (
	"database/sql"
)

// RoleType selects one of the two structurally identical schedule
// collections.
type RoleType string

const (
	RoleMD    RoleType = "md"
	RoleSales RoleType = "sales"
)

// Valid reports whether rt names a known schedule collection.
func (rt RoleType) Valid() bool {
	return rt == RoleMD || rt == RoleSales
}

// Schedule statuses. A row only ever moves scheduled -> completed, and only
// as a side effect of a successful check-out.
const (
	ScheduleStatusScheduled = "scheduled"
	ScheduleStatusCompleted = "completed"
)

// VisitSchedule is a planned visit to an outlet by an assignee on a date,
// independent of execution. The outlet is referenced by external code only;
// the store enforces no foreign key.
type VisitSchedule struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`

	AreaCode  string `db:"area_code"`
	DepotCode string `db:"depot_code"`

	OutletCode string `db:"outlet_code"`
	OutletName string `db:"outlet_name"`

	VisitDate string `db:"visit_date"` // YYYY-MM-DD
	Status    string `db:"status"`

	CreatedAt sql.NullTime `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
	SyncedAt  sql.NullTime `db:"synced_at"`
}

func (v *VisitSchedule) ToJSON() map[string]any {
	m := map[string]any{
		"id":          v.ID,
		"username":    v.Username,
		"area_code":   v.AreaCode,
		"depot_code":  v.DepotCode,
		"outlet_code": v.OutletCode,
		"outlet_name": v.OutletName,
		"visit_date":  v.VisitDate,
		"status":      v.Status,
	}
	if v.CreatedAt.Valid {
		m["created_at"] = v.CreatedAt.Time.Format("2006-01-02 15:04:05")
	}
	if v.UpdatedAt.Valid {
		m["updated_at"] = v.UpdatedAt.Time.Format("2006-01-02 15:04:05")
	}
	if v.SyncedAt.Valid {
		m["synced_at"] = v.SyncedAt.Time.Format("2006-01-02 15:04:05")
	}
	return m
}
