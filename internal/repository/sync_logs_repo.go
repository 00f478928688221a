package repository

import (
	"context"

	"fieldvisit/internal/domain"
)

// SyncLogsRepository records housekeeping runs of the mark-as-synced pass.
type SyncLogsRepository interface {
	Insert(ctx context.Context, log *domain.SyncLog) error
	List(ctx context.Context, limit int) ([]*domain.SyncLog, error)
}
