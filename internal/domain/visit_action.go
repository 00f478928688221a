package domain

import (
	"database/sql"
)

// PhotoSlot is one of the two documentation photos attached to a visit
// action. Writing a slot twice overwrites it (last write wins).
type PhotoSlot string

const (
	PhotoBefore PhotoSlot = "before"
	PhotoAfter  PhotoSlot = "after"
)

func (s PhotoSlot) Valid() bool {
	return s == PhotoBefore || s == PhotoAfter
}

// Classification is the closed-set site-condition outcome of a visit.
type Classification string

const (
	ClassificationInstalled      Classification = "installed"
	ClassificationOutletNotFound Classification = "outlet_not_found"
	ClassificationStoreClosed    Classification = "store_closed"
)

func (c Classification) Valid() bool {
	switch c {
	case ClassificationInstalled, ClassificationOutletNotFound, ClassificationStoreClosed:
		return true
	}
	return false
}

// VisitAction is the audit record produced by executing a visit. One row is
// created per check-in and fields are only ever added afterwards, never
// cleared. Assignee and outlet identity are denormalized at check-in time so
// the record stays readable even if the source rows change or disappear.
type VisitAction struct {
	ID         int64    `db:"id"`
	ScheduleID int64    `db:"schedule_id"`
	RoleType   RoleType `db:"role_type"`

	Username     string `db:"username"`
	AssigneeName string `db:"assignee_name"`
	AreaCode     string `db:"area_code"`
	DepotCode    string `db:"depot_code"`

	OutletCode      string  `db:"outlet_code"`
	OutletName      string  `db:"outlet_name"`
	OutletAddress   string  `db:"outlet_address"`
	OutletLatitude  float64 `db:"outlet_latitude"`
	OutletLongitude float64 `db:"outlet_longitude"`

	CheckInLatitude  sql.NullFloat64 `db:"checkin_latitude"`
	CheckInLongitude sql.NullFloat64 `db:"checkin_longitude"`
	CheckInTime      sql.NullTime    `db:"checkin_time"`

	CheckOutLatitude  sql.NullFloat64 `db:"checkout_latitude"`
	CheckOutLongitude sql.NullFloat64 `db:"checkout_longitude"`
	CheckOutTime      sql.NullTime    `db:"checkout_time"`

	PhotoBefore    sql.NullString `db:"photo_before"`
	PhotoAfter     sql.NullString `db:"photo_after"`
	Classification sql.NullString `db:"classification"`

	CreatedAt sql.NullTime `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
	SyncedAt  sql.NullTime `db:"synced_at"`
}

// Completed reports whether the action reached check-out.
func (a *VisitAction) Completed() bool {
	return a.CheckOutTime.Valid
}

func (a *VisitAction) ToJSON() map[string]any {
	m := map[string]any{
		"id":               a.ID,
		"schedule_id":      a.ScheduleID,
		"role_type":        string(a.RoleType),
		"username":         a.Username,
		"assignee_name":    a.AssigneeName,
		"area_code":        a.AreaCode,
		"depot_code":       a.DepotCode,
		"outlet_code":      a.OutletCode,
		"outlet_name":      a.OutletName,
		"outlet_address":   a.OutletAddress,
		"outlet_latitude":  a.OutletLatitude,
		"outlet_longitude": a.OutletLongitude,
	}
	if a.CheckInLatitude.Valid {
		m["checkin_latitude"] = a.CheckInLatitude.Float64
	}
	if a.CheckInLongitude.Valid {
		m["checkin_longitude"] = a.CheckInLongitude.Float64
	}
	if a.CheckInTime.Valid {
		m["checkin_time"] = a.CheckInTime.Time.Format("2006-01-02 15:04:05")
	}
	if a.CheckOutLatitude.Valid {
		m["checkout_latitude"] = a.CheckOutLatitude.Float64
	}
	if a.CheckOutLongitude.Valid {
		m["checkout_longitude"] = a.CheckOutLongitude.Float64
	}
	if a.CheckOutTime.Valid {
		m["checkout_time"] = a.CheckOutTime.Time.Format("2006-01-02 15:04:05")
	}
	if a.PhotoBefore.Valid {
		m["photo_before"] = a.PhotoBefore.String
	}
	if a.PhotoAfter.Valid {
		m["photo_after"] = a.PhotoAfter.String
	}
	if a.Classification.Valid {
		m["classification"] = a.Classification.String
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
