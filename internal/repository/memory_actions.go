package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"fieldvisit/internal/domain"
)

// MemoryActionsRepository backs the visit-action audit store for DB-less dev
// and unit tests. Mutators mirror the Postgres single-statement semantics:
// each call touches exactly one field group under the lock.
type MemoryActionsRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]*domain.VisitAction
}

func NewMemoryActionsRepository() *MemoryActionsRepository {
	return &MemoryActionsRepository{rows: map[int64]*domain.VisitAction{}}
}

func cloneAction(a *domain.VisitAction) *domain.VisitAction {
	c := *a
	return &c
}

func matchActionFilters(a *domain.VisitAction, filters ActionFilters) bool {
	if filters.Username != "" && a.Username != filters.Username {
		return false
	}
	if filters.Date != "" {
		if !a.CreatedAt.Valid || a.CreatedAt.Time.Format("2006-01-02") != filters.Date {
			return false
		}
	}
	switch filters.Completion {
	case CompletionCompleted:
		if !a.CheckOutTime.Valid {
			return false
		}
	case CompletionInProgress:
		if a.CheckOutTime.Valid {
			return false
		}
	}
	return true
}

func (r *MemoryActionsRepository) List(_ context.Context, filters ActionFilters) ([]*domain.VisitAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.VisitAction{}
	for _, a := range r.rows {
		if matchActionFilters(a, filters) {
			out = append(out, cloneAction(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *MemoryActionsRepository) ListRecent(ctx context.Context, limit int) ([]*domain.VisitAction, error) {
	all, err := r.List(ctx, ActionFilters{})
	if err != nil {
		return nil, err
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *MemoryActionsRepository) Get(_ context.Context, id int64) (*domain.VisitAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAction(a), nil
}

func (r *MemoryActionsRepository) Create(_ context.Context, action *domain.VisitAction) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	c := cloneAction(action)
	c.ID = r.nextID
	now := time.Now()
	c.CheckInTime = sql.NullTime{Time: now, Valid: true}
	c.CreatedAt = sql.NullTime{Time: now, Valid: true}
	c.UpdatedAt = sql.NullTime{Time: now, Valid: true}
	r.rows[c.ID] = c
	return c.ID, nil
}

func (r *MemoryActionsRepository) SetPhoto(_ context.Context, id int64, slot domain.PhotoSlot, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	ref := sql.NullString{String: path, Valid: true}
	if slot == domain.PhotoAfter {
		a.PhotoAfter = ref
	} else {
		a.PhotoBefore = ref
	}
	a.UpdatedAt = sql.NullTime{Time: time.Now(), Valid: true}
	return nil
}

func (r *MemoryActionsRepository) SetClassification(_ context.Context, id int64, value domain.Classification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	a.Classification = sql.NullString{String: string(value), Valid: true}
	a.UpdatedAt = sql.NullTime{Time: time.Now(), Valid: true}
	return nil
}

func (r *MemoryActionsRepository) SetCheckOut(_ context.Context, id int64, lat, lon float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	a.CheckOutLatitude = sql.NullFloat64{Float64: lat, Valid: true}
	a.CheckOutLongitude = sql.NullFloat64{Float64: lon, Valid: true}
	a.CheckOutTime = sql.NullTime{Time: now, Valid: true}
	a.UpdatedAt = sql.NullTime{Time: now, Valid: true}
	return nil
}

func (r *MemoryActionsRepository) Count(_ context.Context) (total, completed int, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.rows {
		total++
		if a.CheckOutTime.Valid {
			completed++
		}
	}
	return total, completed, nil
}

func (r *MemoryActionsRepository) CountByClassification(_ context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := map[string]int{}
	for _, a := range r.rows {
		if a.Classification.Valid {
			out[a.Classification.String]++
		}
	}
	return out, nil
}

func (r *MemoryActionsRepository) MarkSynced(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	now := time.Now()
	for _, a := range r.rows {
		if !a.SyncedAt.Valid || (a.UpdatedAt.Valid && a.SyncedAt.Time.Before(a.UpdatedAt.Time)) {
			a.SyncedAt = sql.NullTime{Time: now, Valid: true}
			n++
		}
	}
	return n, nil
}
