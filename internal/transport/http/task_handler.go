package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/taskloop/taskloop-api/internal/domain"
	"github.com/taskloop/taskloop-api/internal/service"
	"github.com/taskloop/taskloop-api/internal/util"
)

type TaskHandler struct {
	tasks *service.TaskService
}

func RegisterTasks(e *echo.Echo, auth *service.AuthService, tasks *service.TaskService) {
	handler := &TaskHandler{tasks: tasks}

	protected := e.Group("/tasks", RequireAuth(auth))
	protected.POST("", handler.createTask)
	protected.GET("", handler.listTasks)
	protected.PATCH("/:taskId", handler.updateTask)
	protected.DELETE("/:taskId", handler.deleteTask)
}

func (h *TaskHandler) createTask(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Fail("you are not logged in"))
	}

	var req TaskCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid request body"))
	}
	input, err := req.toInput()
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail(err.Error()))
	}

	task, err := h.tasks.Create(c.Request().Context(), user.Email, input)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.JSON(http.StatusBadRequest, util.Fail(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Fail("could not create task"))
	}

	return c.JSON(http.StatusCreated, util.Success(util.Envelope{
		"task": task,
	}))
}

func (h *TaskHandler) listTasks(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Fail("you are not logged in"))
	}

	var priority *domain.TaskPriority
	if v := strings.TrimSpace(c.QueryParam("priority")); v != "" {
		p := domain.TaskPriority(v)
		priority = &p
	}

	tasks, err := h.tasks.List(c.Request().Context(), user.Email, priority)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.JSON(http.StatusBadRequest, util.Fail(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Fail("could not load tasks"))
	}

	return c.JSON(http.StatusOK, util.Success(util.Envelope{
		"tasks": tasks,
		"count": len(tasks),
	}))
}

func (h *TaskHandler) updateTask(c echo.Context) error {
	taskID, err := uuid.Parse(strings.TrimSpace(c.Param("taskId")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("taskId is not a valid id"))
	}

	var req TaskPatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid request body"))
	}
	patch, err := req.toPatch()
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail(err.Error()))
	}

	task, err := h.tasks.Update(c.Request().Context(), taskID, patch)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, util.Fail(err.Error()))
		case errors.Is(err, service.ErrTaskNotFound):
			return c.JSON(http.StatusBadRequest, util.Fail("task not found"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Fail("could not update task"))
		}
	}

	return c.JSON(http.StatusOK, util.Success(util.Envelope{
		"task": task,
	}))
}

func (h *TaskHandler) deleteTask(c echo.Context) error {
	taskID, err := uuid.Parse(strings.TrimSpace(c.Param("taskId")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("taskId is not a valid id"))
	}

	if err := h.tasks.Delete(c.Request().Context(), taskID); err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			return c.JSON(http.StatusBadRequest, util.Fail("task not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Fail("could not delete task"))
	}

	return c.NoContent(http.StatusNoContent)
}
