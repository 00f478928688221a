package domain

import (
	"database/sql"
)

// SyncLog records one run of the mark-as-synced housekeeping pass.
type SyncLog struct {
	ID          int64  `db:"id"`
	SyncType    string `db:"sync_type"` // "scheduled" or "manual"
	TableName   string `db:"table_name"`
	RecordCount int    `db:"record_count"`
	Status      string `db:"status"` // "success" or "error"
	Message     string `db:"message"`

	SyncTime sql.NullTime `db:"sync_time"`
}

func (l *SyncLog) ToJSON() map[string]any {
	m := map[string]any{
		"id":           l.ID,
		"sync_type":    l.SyncType,
		"table_name":   l.TableName,
		"record_count": l.RecordCount,
		"status":       l.Status,
		"message":      l.Message,
	}
	if l.SyncTime.Valid {
		m["sync_time"] = l.SyncTime.Time.Format("2006-01-02 15:04:05")
	}
	return m
}
