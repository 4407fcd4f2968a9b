package ports

import (
	"context"

	"github.com/taskhub/task-service/internal/core/domain"
)

// CreateTaskInput carries the payload for a new task. The owner is never
// part of the input; it is always the authenticated caller.
type CreateTaskInput struct {
	Description string
	Completed   bool
}

// ListTasksInput carries the raw query parameters exactly as received from
// the client. Values that fail to parse are ignored rather than rejected.
type ListTasksInput struct {
	OwnerID   string
	Completed string // "true" / "false"; anything else = no filter
	SortBy    string // "field:direction"; unknown field or direction = natural order
	Limit     string // non-negative integer; absent/invalid = unbounded
	Skip      string // non-negative integer; absent/invalid = 0
}

// TaskService is the task query engine plus the per-task ownership gate.
type TaskService interface {
	Create(ctx context.Context, ownerID string, in CreateTaskInput) (*domain.Task, error)
	List(ctx context.Context, in ListTasksInput) ([]*domain.Task, error)
	Get(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
	// Update applies a partial update restricted to the allow-list
	// {description, completed}; any unknown key rejects the whole update.
	Update(ctx context.Context, ownerID, taskID string, fields map[string]any) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
}
