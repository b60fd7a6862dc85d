package domain

import (
	"fmt"
	"strings"
	"time"
)

// Task is a to-do item assigned by management to a field user.
type Task struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	AssigneeID  string
	CreatedByID string
	Priority    TaskPriority
	Status      TaskStatus

	// BlockedFrom remembers the status to restore on Unblock.
	BlockedFrom TaskStatus

	DueDate        *time.Time
	AcknowledgedAt *time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PrepareNew validates a task assignment and puts it in pending.
func (t *Task) PrepareNew(now time.Time) error {
	t.Title = strings.TrimSpace(t.Title)
	if t.ProjectID == "" {
		return NewValidationError("project_id", "is required")
	}
	if t.Title == "" {
		return NewValidationError("title", "is required")
	}
	if t.AssigneeID == "" {
		return NewValidationError("assignee_id", "is required")
	}
	switch t.Priority {
	case "":
		t.Priority = PriorityMedium
	case PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow:
	default:
		return NewValidationError("priority", "must be one of urgent, high, medium, low")
	}
	t.Status = TaskPending
	t.BlockedFrom = ""
	t.AcknowledgedAt = nil
	t.CompletedAt = nil
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

// IsUnacknowledged reports whether the assignee has not yet seen the task.
func (t *Task) IsUnacknowledged() bool {
	return t.Status == TaskPending
}

// Acknowledge records that the assignee has seen the task. Assignee only.
func (t *Task) Acknowledge(actor Actor, now time.Time) error {
	if actor.UserID != t.AssigneeID {
		return fmt.Errorf("only the assignee can acknowledge this task: %w", ErrForbidden)
	}
	if err := t.move(TaskAcknowledged); err != nil {
		return err
	}
	t.AcknowledgedAt = &now
	t.UpdatedAt = now
	return nil
}

// Start marks the task in progress. Assignee only.
func (t *Task) Start(actor Actor, now time.Time) error {
	if actor.UserID != t.AssigneeID {
		return fmt.Errorf("only the assignee can start this task: %w", ErrForbidden)
	}
	if err := t.move(TaskInProgress); err != nil {
		return err
	}
	t.UpdatedAt = now
	return nil
}

// Complete closes the task. Assignee or a manager.
func (t *Task) Complete(actor Actor, now time.Time) error {
	if actor.UserID != t.AssigneeID && !actor.IsManager() {
		return fmt.Errorf("only the assignee or a manager can complete this task: %w", ErrForbidden)
	}
	if err := t.move(TaskCompleted); err != nil {
		return err
	}
	if t.CompletedAt == nil {
		t.CompletedAt = &now
	}
	t.UpdatedAt = now
	return nil
}

// Block parks the task. Allowed for the assignee, the creator or a manager.
func (t *Task) Block(actor Actor, now time.Time) error {
	if !t.canToggleBlocked(actor) {
		return fmt.Errorf("only the assignee, creator or a manager can block this task: %w", ErrForbidden)
	}
	if t.Status == TaskBlocked || t.Status == TaskCompleted {
		return &InvalidTransitionError{Entity: "task", ID: t.ID, From: string(t.Status), To: string(TaskBlocked)}
	}
	t.BlockedFrom = t.Status
	t.Status = TaskBlocked
	t.UpdatedAt = now
	return nil
}

// Unblock restores the status the task held before Block.
func (t *Task) Unblock(actor Actor, now time.Time) error {
	if !t.canToggleBlocked(actor) {
		return fmt.Errorf("only the assignee, creator or a manager can unblock this task: %w", ErrForbidden)
	}
	if t.Status != TaskBlocked {
		return &InvalidTransitionError{Entity: "task", ID: t.ID, From: string(t.Status), To: "unblocked"}
	}
	restore := t.BlockedFrom
	if restore == "" {
		restore = TaskPending
	}
	t.Status = restore
	t.BlockedFrom = ""
	t.UpdatedAt = now
	return nil
}

func (t *Task) canToggleBlocked(actor Actor) bool {
	return actor.UserID == t.AssigneeID || actor.UserID == t.CreatedByID || actor.IsManager()
}

func (t *Task) move(to TaskStatus) error {
	if !CanTransitionTask(t.Status, to) {
		return &InvalidTransitionError{Entity: "task", ID: t.ID, From: string(t.Status), To: string(to)}
	}
	t.Status = to
	return nil
}
