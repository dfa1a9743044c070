package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskloop/taskloop-api/internal/domain"
)

// TaskPatch carries the optional fields of a partial update; nil fields
// keep their stored value.
type TaskPatch struct {
	WorkTitle *string
	TaskTitle *string
	Assignee  *string
	Deadline  *time.Time
	Priority  *domain.TaskPriority
	Status    *domain.TaskStatus
}

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListByParticipant(ctx context.Context, email string, priority *domain.TaskPriority) ([]domain.Task, error)
	ListByStatus(ctx context.Context, status domain.TaskStatus) ([]domain.Task, error)
	Update(ctx context.Context, id uuid.UUID, patch TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
