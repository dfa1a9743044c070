package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/taskloop/taskloop-api/internal/domain"
	"github.com/taskloop/taskloop-api/internal/repository/ports"
	"github.com/taskloop/taskloop-api/internal/service"
)

// TaskCreateRequest mirrors the task document fields the frontend posts.
type TaskCreateRequest struct {
	WorkTitle *string `json:"workTitle,omitempty"`
	TaskTitle string  `json:"taskTitle"`
	Assignee  string  `json:"assignee"`
	Deadline  *string `json:"deadline,omitempty"`
	Priority  *string `json:"priority,omitempty"`
	Status    *string `json:"status,omitempty"`
}

// TaskPatchRequest carries the optional fields of a partial update.
type TaskPatchRequest struct {
	WorkTitle *string `json:"workTitle,omitempty"`
	TaskTitle *string `json:"taskTitle,omitempty"`
	Assignee  *string `json:"assignee,omitempty"`
	Deadline  *string `json:"deadline,omitempty"`
	Priority  *string `json:"priority,omitempty"`
	Status    *string `json:"status,omitempty"`
}

func (r TaskCreateRequest) toInput() (service.TaskCreateInput, error) {
	input := service.TaskCreateInput{
		WorkTitle: r.WorkTitle,
		TaskTitle: r.TaskTitle,
		Assignee:  r.Assignee,
	}
	if r.Deadline != nil {
		deadline, err := parseDeadline(*r.Deadline)
		if err != nil {
			return input, err
		}
		input.Deadline = deadline
	}
	if r.Priority != nil {
		p := domain.TaskPriority(strings.TrimSpace(*r.Priority))
		input.Priority = &p
	}
	if r.Status != nil {
		s := domain.TaskStatus(strings.TrimSpace(*r.Status))
		input.Status = &s
	}
	return input, nil
}

func (r TaskPatchRequest) toPatch() (ports.TaskPatch, error) {
	patch := ports.TaskPatch{
		WorkTitle: r.WorkTitle,
		TaskTitle: r.TaskTitle,
		Assignee:  r.Assignee,
	}
	if r.Deadline != nil {
		deadline, err := parseDeadline(*r.Deadline)
		if err != nil {
			return patch, err
		}
		patch.Deadline = deadline
	}
	if r.Priority != nil {
		p := domain.TaskPriority(strings.TrimSpace(*r.Priority))
		patch.Priority = &p
	}
	if r.Status != nil {
		s := domain.TaskStatus(strings.TrimSpace(*r.Status))
		patch.Status = &s
	}
	return patch, nil
}

func parseDeadline(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return &parsed, nil
		}
	}
	return nil, fmt.Errorf("deadline must be an RFC3339 timestamp or YYYY-MM-DD date")
}
