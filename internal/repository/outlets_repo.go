package repository

import (
	"context"

	"fieldvisit/internal/domain"
)

// OutletsRepository stores retail outlets. The external outlet code is the
// unique identity; Upsert is keyed on it so repeated imports refresh rather
// than duplicate.
type OutletsRepository interface {
	List(ctx context.Context, filters OutletFilters) ([]*domain.Outlet, error)
	Get(ctx context.Context, id int64) (*domain.Outlet, error)
	GetByCode(ctx context.Context, outletCode string) (*domain.Outlet, error)

	Create(ctx context.Context, outlet *domain.Outlet) (int64, error)
	Update(ctx context.Context, id int64, outlet *domain.Outlet) error
	Delete(ctx context.Context, id int64) error

	// Upsert inserts or replaces the row with the same outlet_code.
	Upsert(ctx context.Context, outlet *domain.Outlet) error

	Count(ctx context.Context) (int, error)
	MarkSynced(ctx context.Context) (int64, error)
}

// OutletFilters narrows List results; empty fields are ignored.
type OutletFilters struct {
	Username   string
	DepotCode  string
	OutletCode string
}
