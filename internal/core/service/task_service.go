package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhub/task-service/internal/core/domain"
	"github.com/taskhub/task-service/internal/core/ports"
)

// externalSortFields maps the sort keys callers may use to the stored
// field names. Anything else is not a sortable field.
var externalSortFields = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"description": "description",
	"completed":   "completed",
}

// taskUpdateFields is the allow-list for PATCH /tasks/:id.
var taskUpdateFields = map[string]struct{}{
	"description": {},
	"completed":   {},
}

// TaskService owns task CRUD and the list query engine. Every operation is
// scoped to the authenticated owner; a task belonging to someone else is
// indistinguishable from one that does not exist.
type TaskService struct {
	repo ports.TaskRepository
	log  zerolog.Logger
}

func NewTaskService(repo ports.TaskRepository, log zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, log: log}
}

func (s *TaskService) Create(ctx context.Context, ownerID string, in ports.CreateTaskInput) (*domain.Task, error) {
	description := strings.TrimSpace(in.Description)
	if err := domain.ValidateDescription(description); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &domain.Task{
		Description: description,
		Completed:   in.Completed,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	s.log.Debug().Str("task_id", created.ID).Str("owner_id", ownerID).Msg("task created")
	return created, nil
}

// List runs the query engine. All three parameters are lenient: a value
// that does not parse is treated as if it had not been sent.
func (s *TaskService) List(ctx context.Context, in ports.ListTasksInput) ([]*domain.Task, error) {
	filter := ports.TaskListFilter{OwnerID: in.OwnerID}

	if in.Completed != "" {
		if v, err := strconv.ParseBool(in.Completed); err == nil {
			filter.Completed = &v
		}
	}

	filter.SortField, filter.SortAsc = parseSortBy(in.SortBy)
	filter.Limit = parsePageParam(in.Limit)
	filter.Skip = parsePageParam(in.Skip)

	return s.repo.List(ctx, filter)
}

func (s *TaskService) Get(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	return s.repo.FindByIDAndOwner(ctx, taskID, ownerID)
}

// Update applies a partial update to an owned task. Unknown keys reject the
// whole update before the task is even looked up.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID string, fields map[string]any) (*domain.Task, error) {
	if err := checkAllowedFields(fields, taskUpdateFields); err != nil {
		return nil, err
	}

	task, err := s.repo.FindByIDAndOwner(ctx, taskID, ownerID)
	if err != nil {
		return nil, err
	}

	updated := *task
	for name, value := range fields {
		switch name {
		case "description":
			v, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: description must be a string", domain.ErrValidation)
			}
			trimmed := strings.TrimSpace(v)
			if err := domain.ValidateDescription(trimmed); err != nil {
				return nil, err
			}
			updated.Description = trimmed
		case "completed":
			v, ok := value.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: completed must be a boolean", domain.ErrValidation)
			}
			updated.Completed = v
		}
	}

	updated.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes an owned task and returns it.
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	task, err := s.repo.DeleteByIDAndOwner(ctx, taskID, ownerID)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Str("task_id", taskID).Str("owner_id", ownerID).Msg("task deleted")
	return task, nil
}

// parseSortBy interprets a "field:direction" value. Both halves must be
// recognized for the sort to apply; otherwise insertion order stands.
func parseSortBy(raw string) (field string, asc bool) {
	if raw == "" {
		return "", false
	}

	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return "", false
	}

	stored, ok := externalSortFields[parts[0]]
	if !ok {
		return "", false
	}

	switch parts[1] {
	case "asc":
		return stored, true
	case "desc":
		return stored, false
	default:
		return "", false
	}
}

// parsePageParam reads a non-negative integer; anything else means the
// parameter was not supplied.
func parsePageParam(raw string) int64 {
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
