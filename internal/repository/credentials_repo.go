package repository

import (
	"context"

	"fieldvisit/internal/domain"
)

// CredentialsRepository stores login records for the auth glue. Separate
// from assignees: a credential authenticates, an assignee attributes.
type CredentialsRepository interface {
	List(ctx context.Context) ([]*domain.Credential, error)
	GetByUsername(ctx context.Context, username string) (*domain.Credential, error)
	Create(ctx context.Context, cred *domain.Credential) (int64, error)
	Delete(ctx context.Context, id int64) error
}
