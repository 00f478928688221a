package repository

import (
	"context"

	"fieldvisit/internal/domain"
)

// SchedulesRepository stores one of the two visit-schedule collections
// (merchandiser or sales). The collections are structurally identical, so a
// single implementation is constructed once per backing table.
type SchedulesRepository interface {
	List(ctx context.Context, filters ScheduleFilters) ([]*domain.VisitSchedule, error)
	Get(ctx context.Context, id int64) (*domain.VisitSchedule, error)

	Create(ctx context.Context, schedule *domain.VisitSchedule) (int64, error)
	Update(ctx context.Context, id int64, schedule *domain.VisitSchedule) error
	Delete(ctx context.Context, id int64) error

	// Complete moves the row to status=completed. Called only by the visit
	// state machine after a successful check-out write; never reversed.
	Complete(ctx context.Context, id int64) error

	CountByStatus(ctx context.Context) (scheduled, completed int, err error)
	MarkSynced(ctx context.Context) (int64, error)
}

// ScheduleFilters narrows List results; empty fields are ignored.
type ScheduleFilters struct {
	Username  string
	VisitDate string // YYYY-MM-DD
	Status    string
}
