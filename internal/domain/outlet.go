package domain

import (
	"database/sql"
)

// Outlet is a retail location identified by its external code.
// Coordinates are fixed at registration time and are the reference point
// for the check-in geofence.
type Outlet struct {
	ID        int64  `db:"id"`
	Username  string `db:"username"` // assignee responsible for the outlet
	AreaCode  string `db:"area_code"`
	DepotCode string `db:"depot_code"`

	// OutletCode uniquely identifies the outlet across imports (upsert key).
	OutletCode string `db:"outlet_code"`
	Name       string `db:"name"`
	Address    string `db:"address"`

	Latitude  float64 `db:"latitude"`
	Longitude float64 `db:"longitude"`

	CreatedAt sql.NullTime `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
	SyncedAt  sql.NullTime `db:"synced_at"`
}

// ValidCoordinates reports whether the outlet's coordinates are inside
// standard latitude/longitude ranges.
func (o *Outlet) ValidCoordinates() bool {
	return o.Latitude >= -90 && o.Latitude <= 90 &&
		o.Longitude >= -180 && o.Longitude <= 180
}

func (o *Outlet) ToJSON() map[string]any {
	m := map[string]any{
		"id":          o.ID,
		"username":    o.Username,
		"area_code":   o.AreaCode,
		"depot_code":  o.DepotCode,
		"outlet_code": o.OutletCode,
		"name":        o.Name,
		"address":     o.Address,
		"latitude":    o.Latitude,
		"longitude":   o.Longitude,
	}
	if o.CreatedAt.Valid {
		m["created_at"] = o.CreatedAt.Time.Format("2006-01-02 15:04:05")
	}
	if o.UpdatedAt.Valid {
		m["updated_at"] = o.UpdatedAt.Time.Format("2006-01-02 15:04:05")
	}
	if o.SyncedAt.Valid {
		m["synced_at"] = o.SyncedAt.Time.Format("2006-01-02 15:04:05")
	}
	return m
}
