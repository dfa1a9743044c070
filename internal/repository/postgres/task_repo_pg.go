package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/taskloop/taskloop-api/internal/domain"
	"github.com/taskloop/taskloop-api/internal/repository/ports"
)

type TaskRepository struct {
	db *sqlx.DB
}

func NewTaskRepo(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	const query = `
        INSERT INTO task (work_title, task_title, assignee, assignor, deadline, priority, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, work_title, task_title, assignee, assignor, deadline, priority, status, created_at, updated_at
    `
	row := r.db.QueryRowxContext(ctx, query,
		task.WorkTitle, task.TaskTitle, task.Assignee, task.Assignor,
		task.Deadline, task.Priority, task.Status)
	var created domain.Task
	if err := row.StructScan(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	const query = `
        SELECT id, work_title, task_title, assignee, assignor, deadline, priority, status, created_at, updated_at
        FROM task
        WHERE id = $1
    `
	var task domain.Task
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) ListByParticipant(ctx context.Context, email string, priority *domain.TaskPriority) ([]domain.Task, error) {
	const base = `
        SELECT id, work_title, task_title, assignee, assignor, deadline, priority, status, created_at, updated_at
        FROM task
        WHERE (assignor = $1 OR assignee = $1)
    `
	var tasks []domain.Task
	if priority != nil {
		if err := r.db.SelectContext(ctx, &tasks, base+` AND priority = $2 ORDER BY created_at DESC`, email, *priority); err != nil {
			return nil, err
		}
		return tasks, nil
	}
	if err := r.db.SelectContext(ctx, &tasks, base+` ORDER BY created_at DESC`, email); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) ListByStatus(ctx context.Context, status domain.TaskStatus) ([]domain.Task, error) {
	const query = `
        SELECT id, work_title, task_title, assignee, assignor, deadline, priority, status, created_at, updated_at
        FROM task
        WHERE status = $1
        ORDER BY created_at
    `
	var tasks []domain.Task
	if err := r.db.SelectContext(ctx, &tasks, query, status); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, id uuid.UUID, patch ports.TaskPatch) (*domain.Task, error) {
	const query = `
        UPDATE task
        SET work_title = COALESCE($2, work_title),
            task_title = COALESCE($3, task_title),
            assignee = COALESCE($4, assignee),
            deadline = COALESCE($5, deadline),
            priority = COALESCE($6, priority),
            status = COALESCE($7, status),
            updated_at = NOW()
        WHERE id = $1
        RETURNING id, work_title, task_title, assignee, assignor, deadline, priority, status, created_at, updated_at
    `
	row := r.db.QueryRowxContext(ctx, query, id,
		patch.WorkTitle, patch.TaskTitle, patch.Assignee,
		patch.Deadline, patch.Priority, patch.Status)
	var task domain.Task
	if err := row.StructScan(&task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM task WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
