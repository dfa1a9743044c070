package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskloop/taskloop-api/internal/domain"
	"github.com/taskloop/taskloop-api/internal/repository/ports"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskCreateInput struct {
	WorkTitle *string
	TaskTitle string
	Assignee  string
	Deadline  *time.Time
	Priority  *domain.TaskPriority
	Status    *domain.TaskStatus
}

type TaskService struct {
	tasks ports.TaskRepository
}

func NewTaskService(tasks ports.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

// Create stores a new task on behalf of assignor, who is always the
// authenticated caller.
func (s *TaskService) Create(ctx context.Context, assignor string, input TaskCreateInput) (*domain.Task, error) {
	input.TaskTitle = strings.TrimSpace(input.TaskTitle)
	input.Assignee = normalizeEmail(input.Assignee)
	if input.TaskTitle == "" {
		return nil, fmt.Errorf("%w: taskTitle is required", ErrValidation)
	}
	if input.Assignee == "" {
		return nil, fmt.Errorf("%w: assignee is required", ErrValidation)
	}

	priority := domain.TaskPriorityNormal
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, *input.Priority)
		}
		priority = *input.Priority
	}
	status := domain.TaskStatusTodo
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *input.Status)
		}
		status = *input.Status
	}

	task := &domain.Task{
		WorkTitle: input.WorkTitle,
		TaskTitle: input.TaskTitle,
		Assignee:  input.Assignee,
		Assignor:  assignor,
		Deadline:  input.Deadline,
		Priority:  priority,
		Status:    status,
	}
	return s.tasks.Create(ctx, task)
}

// List returns the tasks where email is assignor or assignee, newest
// first, optionally restricted to one priority.
func (s *TaskService) List(ctx context.Context, email string, priority *domain.TaskPriority) ([]domain.Task, error) {
	if priority != nil && !priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, *priority)
	}
	tasks, err := s.tasks.ListByParticipant(ctx, email, priority)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// Update applies a partial patch to the task.
func (s *TaskService) Update(ctx context.Context, id uuid.UUID, patch ports.TaskPatch) (*domain.Task, error) {
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, *patch.Priority)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *patch.Status)
	}
	if patch.TaskTitle != nil && strings.TrimSpace(*patch.TaskTitle) == "" {
		return nil, fmt.Errorf("%w: taskTitle cannot be empty", ErrValidation)
	}

	task, err := s.tasks.Update(ctx, id, patch)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}
