package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/taskloop/taskloop-api/internal/domain"
	"github.com/taskloop/taskloop-api/internal/repository/ports"
)

// ReminderSender delivers a pending-task nudge to an assignee.
type ReminderSender interface {
	SendTaskReminder(ctx context.Context, email, taskTitle string) error
}

type ReminderService struct {
	tasks  ports.TaskRepository
	mailer ReminderSender
	logger zerolog.Logger
}

func NewReminderService(tasks ports.TaskRepository, mailer ReminderSender, logger zerolog.Logger) *ReminderService {
	return &ReminderService{tasks: tasks, mailer: mailer, logger: logger}
}

// SweepResult counts the outcome of one reminder run.
type SweepResult struct {
	Pending int
	Sent    int
	Failed  int
}

// Sweep mails one reminder per open task. A failed send is logged and
// the sweep moves on; it never aborts the remaining tasks.
func (s *ReminderService) Sweep(ctx context.Context) (SweepResult, error) {
	pending, err := s.tasks.ListByStatus(ctx, domain.TaskStatusTodo)
	if err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{Pending: len(pending)}
	if len(pending) == 0 {
		s.logger.Info().Msg("reminder sweep: no pending tasks")
		return result, nil
	}

	for _, task := range pending {
		if err := s.mailer.SendTaskReminder(ctx, task.Assignee, task.TaskTitle); err != nil {
			result.Failed++
			s.logger.Error().
				Err(err).
				Str("assignee", task.Assignee).
				Str("task_id", task.ID.String()).
				Msg("reminder send failed")
			continue
		}
		result.Sent++
		s.logger.Info().
			Str("assignee", task.Assignee).
			Str("task_title", task.TaskTitle).
			Msg("reminder sent")
	}

	s.logger.Info().
		Int("pending", result.Pending).
		Int("sent", result.Sent).
		Int("failed", result.Failed).
		Msg("reminder sweep finished")
	return result, nil
}
