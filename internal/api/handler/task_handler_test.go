package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/task-service/internal/core/domain"
	"github.com/taskhub/task-service/internal/core/ports"
)

type stubTaskService struct {
	createFn func(ctx context.Context, ownerID string, in ports.CreateTaskInput) (*domain.Task, error)
	listFn   func(ctx context.Context, in ports.ListTasksInput) ([]*domain.Task, error)
	getFn    func(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
	updateFn func(ctx context.Context, ownerID, taskID string, fields map[string]any) (*domain.Task, error)
	deleteFn func(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
}

func (s *stubTaskService) Create(ctx context.Context, ownerID string, in ports.CreateTaskInput) (*domain.Task, error) {
	return s.createFn(ctx, ownerID, in)
}

func (s *stubTaskService) List(ctx context.Context, in ports.ListTasksInput) ([]*domain.Task, error) {
	return s.listFn(ctx, in)
}

func (s *stubTaskService) Get(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	return s.getFn(ctx, ownerID, taskID)
}

func (s *stubTaskService) Update(ctx context.Context, ownerID, taskID string, fields map[string]any) (*domain.Task, error) {
	return s.updateFn(ctx, ownerID, taskID, fields)
}

func (s *stubTaskService) Delete(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	return s.deleteFn(ctx, ownerID, taskID)
}

func taskContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user", &domain.User{ID: "user_1"})
	c.Set("token", "current-token")
	return c, rec
}

func TestTaskHandler_Create_Success(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		createFn: func(_ context.Context, ownerID string, in ports.CreateTaskInput) (*domain.Task, error) {
			if ownerID != "user_1" {
				t.Fatalf("owner must come from the auth context, got %q", ownerID)
			}
			return &domain.Task{
				ID:          "task_1",
				Description: in.Description,
				Completed:   in.Completed,
				OwnerID:     ownerID,
				CreatedAt:   time.Now().UTC(),
				UpdatedAt:   time.Now().UTC(),
			}, nil
		},
	}
	h := NewTaskHandler(stub)

	c, rec := taskContext(e, http.MethodPost, "/tasks", `{"description":"buy milk"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "task_1" || resp["description"] != "buy milk" || resp["owner_id"] != "user_1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestTaskHandler_Create_MissingDescription(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		createFn: func(context.Context, string, ports.CreateTaskInput) (*domain.Task, error) {
			t.Fatal("should not be called")
			return nil, nil
		},
	}
	h := NewTaskHandler(stub)

	c, _ := taskContext(e, http.MethodPost, "/tasks", `{"completed":true}`)
	err := h.Create(c)
	if he := httpError(t, err); he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", he.Code)
	}
}

func TestTaskHandler_List_PassesRawQueryParams(t *testing.T) {
	e := newEcho()
	var gotIn ports.ListTasksInput
	stub := &stubTaskService{
		listFn: func(_ context.Context, in ports.ListTasksInput) ([]*domain.Task, error) {
			gotIn = in
			return []*domain.Task{
				{ID: "task_1", Description: "one", OwnerID: "user_1"},
				{ID: "task_2", Description: "two", OwnerID: "user_1"},
			}, nil
		},
	}
	h := NewTaskHandler(stub)

	c, rec := taskContext(e, http.MethodGet, "/tasks?completed=true&sortBy=createdAt:desc&limit=5&skip=2", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	want := ports.ListTasksInput{OwnerID: "user_1", Completed: "true", SortBy: "createdAt:desc", Limit: "5", Skip: "2"}
	if gotIn != want {
		t.Fatalf("query params not passed through raw: %+v", gotIn)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	data, ok := resp["data"].([]any)
	if !ok || len(data) != 2 {
		t.Fatalf("expected 2 items in data, got %+v", resp["data"])
	}
	if resp["count"] != float64(2) {
		t.Fatalf("expected count 2, got %v", resp["count"])
	}
}

func TestTaskHandler_List_EmptyPage(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		listFn: func(context.Context, ports.ListTasksInput) ([]*domain.Task, error) {
			return nil, nil
		},
	}
	h := NewTaskHandler(stub)

	c, rec := taskContext(e, http.MethodGet, "/tasks", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	// An empty page must serialize as [] rather than null.
	if got := strings.TrimSpace(rec.Body.String()); !strings.Contains(got, `"data":[]`) {
		t.Fatalf("expected empty array payload, got %s", got)
	}
}

func TestTaskHandler_Get_NotFound(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		getFn: func(_ context.Context, ownerID, taskID string) (*domain.Task, error) {
			if ownerID != "user_1" || taskID != "task_9" {
				t.Fatalf("unexpected args: %s %s", ownerID, taskID)
			}
			return nil, domain.ErrTaskNotFound
		},
	}
	h := NewTaskHandler(stub)

	c, _ := taskContext(e, http.MethodGet, "/tasks/task_9", "")
	c.SetPath("/tasks/:id")
	c.SetParamNames("id")
	c.SetParamValues("task_9")

	err := h.Get(c)
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound to propagate, got %v", err)
	}
}

func TestTaskHandler_Update_PassesRawKeys(t *testing.T) {
	e := newEcho()
	var gotFields map[string]any
	stub := &stubTaskService{
		updateFn: func(_ context.Context, ownerID, taskID string, fields map[string]any) (*domain.Task, error) {
			gotFields = fields
			return &domain.Task{ID: taskID, Description: "final", Completed: true, OwnerID: ownerID}, nil
		},
	}
	h := NewTaskHandler(stub)

	c, rec := taskContext(e, http.MethodPatch, "/tasks/task_1", `{"description":"final","priority":3}`)
	c.SetPath("/tasks/:id")
	c.SetParamNames("id")
	c.SetParamValues("task_1")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(gotFields) != 2 || gotFields["description"] != "final" || gotFields["priority"] != float64(3) {
		t.Fatalf("raw keys not passed through: %+v", gotFields)
	}
}

func TestTaskHandler_Delete_ReturnsTask(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		deleteFn: func(_ context.Context, ownerID, taskID string) (*domain.Task, error) {
			return &domain.Task{ID: taskID, Description: "gone", OwnerID: ownerID}, nil
		},
	}
	h := NewTaskHandler(stub)

	c, rec := taskContext(e, http.MethodDelete, "/tasks/task_1", "")
	c.SetPath("/tasks/:id")
	c.SetParamNames("id")
	c.SetParamValues("task_1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "task_1" || resp["description"] != "gone" {
		t.Fatalf("deletion must return the removed task, got %+v", resp)
	}
}
