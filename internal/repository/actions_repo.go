package repository

import (
	"context"

	"fieldvisit/internal/domain"
)

// Completion-state filter values for action queries.
const (
	CompletionCompleted  = "completed"
	CompletionInProgress = "in_progress"
)

// ActionsRepository stores visit-action audit records. Rows are created by
// check-in and only ever gain fields afterwards; nothing deletes them. Each
// mutator is a single-statement write — the state machine's precondition
// reads happen before it, with no lock held in between.
type ActionsRepository interface {
	List(ctx context.Context, filters ActionFilters) ([]*domain.VisitAction, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.VisitAction, error)
	Get(ctx context.Context, id int64) (*domain.VisitAction, error)

	Create(ctx context.Context, action *domain.VisitAction) (int64, error)

	// SetPhoto overwrites the slot reference (last write wins).
	SetPhoto(ctx context.Context, id int64, slot domain.PhotoSlot, path string) error
	// SetClassification overwrites the classification value.
	SetClassification(ctx context.Context, id int64, value domain.Classification) error
	// SetCheckOut stamps check-out coordinates and time.
	SetCheckOut(ctx context.Context, id int64, lat, lon float64) error

	Count(ctx context.Context) (total, completed int, err error)
	CountByClassification(ctx context.Context) (map[string]int, error)
	MarkSynced(ctx context.Context) (int64, error)
}

// ActionFilters narrows List results; empty fields are ignored. Date matches
// the creation day (YYYY-MM-DD).
type ActionFilters struct {
	Username   string
	Date       string
	Completion string // CompletionCompleted or CompletionInProgress
}
