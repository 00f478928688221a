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

// MemoryAssigneesRepository backs the assignee store for DB-less dev and
// unit tests. Usernames are unique, as in the Postgres table.
type MemoryAssigneesRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]*domain.Assignee
}

func NewMemoryAssigneesRepository() *MemoryAssigneesRepository {
	return &MemoryAssigneesRepository{rows: map[int64]*domain.Assignee{}}
}

func cloneAssignee(a *domain.Assignee) *domain.Assignee {
	c := *a
	return &c
}

func (r *MemoryAssigneesRepository) List(_ context.Context, filters AssigneeFilters) ([]*domain.Assignee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Assignee{}
	for _, a := range r.rows {
		if filters.Username != "" && a.Username != filters.Username {
			continue
		}
		if filters.Role != "" && a.Role != filters.Role {
			continue
		}
		if filters.DepotCode != "" && a.DepotCode != filters.DepotCode {
			continue
		}
		out = append(out, cloneAssignee(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *MemoryAssigneesRepository) Get(_ context.Context, id int64) (*domain.Assignee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAssignee(a), nil
}

func (r *MemoryAssigneesRepository) GetByUsername(_ context.Context, username string) (*domain.Assignee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.rows {
		if a.Username == username {
			return cloneAssignee(a), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryAssigneesRepository) Create(_ context.Context, assignee *domain.Assignee) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.rows {
		if a.Username == assignee.Username {
			return 0, fmt.Errorf("username %q already exists", assignee.Username)
		}
	}

	r.nextID++
	c := cloneAssignee(assignee)
	c.ID = r.nextID
	now := time.Now()
	c.CreatedAt = sql.NullTime{Time: now, Valid: true}
	c.UpdatedAt = sql.NullTime{Time: now, Valid: true}
	r.rows[c.ID] = c
	return c.ID, nil
}

func (r *MemoryAssigneesRepository) Update(_ context.Context, id int64, assignee *domain.Assignee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	c := cloneAssignee(assignee)
	c.ID = id
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = sql.NullTime{Time: time.Now(), Valid: true}
	c.SyncedAt = existing.SyncedAt
	r.rows[id] = c
	return nil
}

func (r *MemoryAssigneesRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *MemoryAssigneesRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows), nil
}

func (r *MemoryAssigneesRepository) MarkSynced(_ context.Context) (int64, error) {
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
