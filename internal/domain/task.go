package domain

import (
	"time"

	"github.com/google/uuid"
)

type TaskPriority string

const (
	TaskPriorityNormal TaskPriority = "Normal"
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityHigh   TaskPriority = "High"
	TaskPriorityUrgent TaskPriority = "Urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityNormal, TaskPriorityLow, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskStatusTodo     TaskStatus = "todo"
	TaskStatusProgress TaskStatus = "progress"
	TaskStatusDone     TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusProgress, TaskStatusDone:
		return true
	}
	return false
}

type Task struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	WorkTitle *string      `db:"work_title" json:"workTitle,omitempty"`
	TaskTitle string       `db:"task_title" json:"taskTitle"`
	Assignee  string       `db:"assignee" json:"assignee"`
	Assignor  string       `db:"assignor" json:"assignor"`
	Deadline  *time.Time   `db:"deadline" json:"deadline,omitempty"`
	Priority  TaskPriority `db:"priority" json:"priority"`
	Status    TaskStatus   `db:"status" json:"status"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// IsParticipant reports whether the given email is on either side of the
// task assignment.
func (t *Task) IsParticipant(email string) bool {
	return t.Assignor == email || t.Assignee == email
}
