package ports

import (
	"context"

	"github.com/taskhub/task-service/internal/core/domain"
)

// TaskListFilter carries the resolved query for listing tasks. OwnerID is
// always set by the service layer; the repository never runs an unscoped
// list.
type TaskListFilter struct {
	OwnerID   string
	Completed *bool  // nil = no completion filter
	SortField string // stored field name; empty = natural order
	SortAsc   bool
	Limit     int64 // 0 = unbounded
	Skip      int64
}

// TaskRepository defines persistence operations for tasks. Every read and
// write that targets a single task is scoped to its owner in the same
// query, so a foreign task behaves exactly like a missing one.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*domain.Task, error)
	// List returns one materialized page matching filter.
	List(ctx context.Context, filter TaskListFilter) ([]*domain.Task, error)
	// Update persists description, completed and the update timestamp,
	// scoped to {id, owner}.
	Update(ctx context.Context, task *domain.Task) error
	// DeleteByIDAndOwner removes the task and returns it, or
	// domain.ErrTaskNotFound.
	DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (*domain.Task, error)
	// DeleteByOwner removes every task the owner has and reports how many
	// documents went away. Used by the account-deletion cascade.
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}
