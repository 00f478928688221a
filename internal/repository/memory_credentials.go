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

type MemoryCredentialsRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]*domain.Credential
}

func NewMemoryCredentialsRepository() *MemoryCredentialsRepository {
	return &MemoryCredentialsRepository{rows: map[int64]*domain.Credential{}}
}

func cloneCredential(c *domain.Credential) *domain.Credential {
	d := *c
	return &d
}

func (r *MemoryCredentialsRepository) List(_ context.Context) ([]*domain.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Credential{}
	for _, c := range r.rows {
		out = append(out, cloneCredential(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *MemoryCredentialsRepository) GetByUsername(_ context.Context, username string) (*domain.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.rows {
		if c.Username == username {
			return cloneCredential(c), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryCredentialsRepository) Create(_ context.Context, cred *domain.Credential) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.rows {
		if c.Username == cred.Username {
			return 0, fmt.Errorf("username %q already exists", cred.Username)
		}
	}

	r.nextID++
	c := cloneCredential(cred)
	c.ID = r.nextID
	c.CreatedAt = sql.NullTime{Time: time.Now(), Valid: true}
	r.rows[c.ID] = c
	return c.ID, nil
}

func (r *MemoryCredentialsRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}
