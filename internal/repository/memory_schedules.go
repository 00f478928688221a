package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"fieldvisit/internal/domain"
)

// MemorySchedulesRepository backs one schedule collection for DB-less dev
// and unit tests. Construct one per role collection, as with Postgres.
type MemorySchedulesRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]*domain.VisitSchedule
}

func NewMemorySchedulesRepository() *MemorySchedulesRepository {
	return &MemorySchedulesRepository{rows: map[int64]*domain.VisitSchedule{}}
}

func cloneSchedule(v *domain.VisitSchedule) *domain.VisitSchedule {
	c := *v
	return &c
}

func (r *MemorySchedulesRepository) List(_ context.Context, filters ScheduleFilters) ([]*domain.VisitSchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.VisitSchedule{}
	for _, v := range r.rows {
		if filters.Username != "" && v.Username != filters.Username {
			continue
		}
		if filters.VisitDate != "" && v.VisitDate != filters.VisitDate {
			continue
		}
		if filters.Status != "" && v.Status != filters.Status {
			continue
		}
		out = append(out, cloneSchedule(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *MemorySchedulesRepository) Get(_ context.Context, id int64) (*domain.VisitSchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSchedule(v), nil
}

func (r *MemorySchedulesRepository) Create(_ context.Context, schedule *domain.VisitSchedule) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	c := cloneSchedule(schedule)
	c.ID = r.nextID
	if c.Status == "" {
		c.Status = domain.ScheduleStatusScheduled
	}
	now := time.Now()
	c.CreatedAt = sql.NullTime{Time: now, Valid: true}
	c.UpdatedAt = sql.NullTime{Time: now, Valid: true}
	r.rows[c.ID] = c
	return c.ID, nil
}

func (r *MemorySchedulesRepository) Update(_ context.Context, id int64, schedule *domain.VisitSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	c := cloneSchedule(schedule)
	c.ID = id
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = sql.NullTime{Time: time.Now(), Valid: true}
	c.SyncedAt = existing.SyncedAt
	r.rows[id] = c
	return nil
}

func (r *MemorySchedulesRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *MemorySchedulesRepository) Complete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	v.Status = domain.ScheduleStatusCompleted
	v.UpdatedAt = sql.NullTime{Time: time.Now(), Valid: true}
	return nil
}

func (r *MemorySchedulesRepository) CountByStatus(_ context.Context) (scheduled, completed int, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range r.rows {
		switch v.Status {
		case domain.ScheduleStatusScheduled:
			scheduled++
		case domain.ScheduleStatusCompleted:
			completed++
		}
	}
	return scheduled, completed, nil
}

func (r *MemorySchedulesRepository) MarkSynced(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	now := time.Now()
	for _, v := range r.rows {
		if !v.SyncedAt.Valid || (v.UpdatedAt.Valid && v.SyncedAt.Time.Before(v.UpdatedAt.Time)) {
			v.SyncedAt = sql.NullTime{Time: now, Valid: true}
			n++
		}
	}
	return n, nil
}
