package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"fieldvisit/internal/domain"
)

// MemoryOutletsRepository backs the outlet store when no DB is configured
// (local dev) and in unit tests. Same uniqueness behavior as the Postgres
// table: outlet_code conflicts fail Create and merge on Upsert.
type MemoryOutletsRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]*domain.Outlet
}

func NewMemoryOutletsRepository() *MemoryOutletsRepository {
	return &MemoryOutletsRepository{rows: map[int64]*domain.Outlet{}}
}

func cloneOutlet(o *domain.Outlet) *domain.Outlet {
	c := *o
	return &c
}

func (r *MemoryOutletsRepository) List(_ context.Context, filters OutletFilters) ([]*domain.Outlet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Outlet{}
	for _, o := range r.rows {
		if filters.Username != "" && o.Username != filters.Username {
			continue
		}
		if filters.DepotCode != "" && o.DepotCode != filters.DepotCode {
			continue
		}
		if filters.OutletCode != "" && o.OutletCode != filters.OutletCode {
			continue
		}
		out = append(out, cloneOutlet(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *MemoryOutletsRepository) Get(_ context.Context, id int64) (*domain.Outlet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneOutlet(o), nil
}

func (r *MemoryOutletsRepository) GetByCode(_ context.Context, outletCode string) (*domain.Outlet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.rows {
		if o.OutletCode == outletCode {
			return cloneOutlet(o), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryOutletsRepository) Create(_ context.Context, outlet *domain.Outlet) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.rows {
		if o.OutletCode == outlet.OutletCode {
			return 0, fmt.Errorf("outlet code %q already exists", outlet.OutletCode)
		}
	}

	r.nextID++
	c := cloneOutlet(outlet)
	c.ID = r.nextID
	now := time.Now()
	c.CreatedAt = sql.NullTime{Time: now, Valid: true}
	c.UpdatedAt = sql.NullTime{Time: now, Valid: true}
	r.rows[c.ID] = c
	return c.ID, nil
}

func (r *MemoryOutletsRepository) Update(_ context.Context, id int64, outlet *domain.Outlet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	c := cloneOutlet(outlet)
	c.ID = id
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = sql.NullTime{Time: time.Now(), Valid: true}
	c.SyncedAt = existing.SyncedAt
	r.rows[id] = c
	return nil
}

func (r *MemoryOutletsRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *MemoryOutletsRepository) Upsert(_ context.Context, outlet *domain.Outlet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for id, o := range r.rows {
		if o.OutletCode == outlet.OutletCode {
			c := cloneOutlet(outlet)
			c.ID = id
			c.CreatedAt = o.CreatedAt
			c.UpdatedAt = sql.NullTime{Time: now, Valid: true}
			r.rows[id] = c
			return nil
		}
	}

	r.nextID++
	c := cloneOutlet(outlet)
	c.ID = r.nextID
	c.CreatedAt = sql.NullTime{Time: now, Valid: true}
	c.UpdatedAt = sql.NullTime{Time: now, Valid: true}
	r.rows[c.ID] = c
	return nil
}

func (r *MemoryOutletsRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows), nil
}

func (r *MemoryOutletsRepository) MarkSynced(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	now := time.Now()
	for _, o := range r.rows {
		if !o.SyncedAt.Valid || (o.UpdatedAt.Valid && o.SyncedAt.Time.Before(o.UpdatedAt.Time)) {
			o.SyncedAt = sql.NullTime{Time: now, Valid: true}
			n++
		}
	}
	return n, nil
}
