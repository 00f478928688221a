package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"fieldvisit/internal/domain"
)

type MemorySyncLogsRepository struct {
	mu     sync.Mutex
	nextID int64
	rows   []*domain.SyncLog
}

func NewMemorySyncLogsRepository() *MemorySyncLogsRepository {
	return &MemorySyncLogsRepository{}
}

func (r *MemorySyncLogsRepository) Insert(_ context.Context, log *domain.SyncLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	c := *log
	c.ID = r.nextID
	c.SyncTime = sql.NullTime{Time: time.Now(), Valid: true}
	r.rows = append(r.rows, &c)
	return nil
}

func (r *MemorySyncLogsRepository) List(_ context.Context, limit int) ([]*domain.SyncLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.SyncLog, 0, len(r.rows))
	for _, l := range r.rows {
		c := *l
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
