package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrTaskNotFound covers both a missing task and a task owned by another
// user: the two cases are deliberately indistinguishable so that guessing
// IDs leaks nothing.
var ErrTaskNotFound = errors.New("task not found")

// Task is a single to-do item owned by exactly one user. The owner is
// assigned by the server at creation time and never changes.
type Task struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidateDescription rejects descriptions that are empty after trimming.
func ValidateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("%w: description must not be empty", ErrValidation)
	}
	return nil
}
