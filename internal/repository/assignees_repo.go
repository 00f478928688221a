package repository

import (
	"context"

	"fieldvisit/internal/domain"
)

// AssigneesRepository stores field-personnel records. Usernames are unique;
// bulk import surfaces the store's uniqueness error per row.
type AssigneesRepository interface {
	List(ctx context.Context, filters AssigneeFilters) ([]*domain.Assignee, error)
	Get(ctx context.Context, id int64) (*domain.Assignee, error)
	GetByUsername(ctx context.Context, username string) (*domain.Assignee, error)

	Create(ctx context.Context, assignee *domain.Assignee) (int64, error)
	Update(ctx context.Context, id int64, assignee *domain.Assignee) error
	Delete(ctx context.Context, id int64) error

	Count(ctx context.Context) (int, error)
	MarkSynced(ctx context.Context) (int64, error)
}

// AssigneeFilters narrows List results; empty fields are ignored.
type AssigneeFilters struct {
	Username  string
	Role      string
	DepotCode string
}
