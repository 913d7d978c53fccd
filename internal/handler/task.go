package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ritualplanner/ritualplanner/internal/model"
	"github.com/ritualplanner/ritualplanner/internal/repository"
)

// TaskHandler serves CRUD for tasks, the central aggregate. A task request
// carries the attached note ids, assistant assignments (each optionally with
// a payment) and the main payment; updates replace all of those collections
// with the submitted set.
type TaskHandler struct {
	Tasks *repository.TaskRepo
}

func NewTaskHandler(tasks *repository.TaskRepo) *TaskHandler {
	return &TaskHandler{Tasks: tasks}
}

func validateTask(t *model.Task) string {
	if strings.TrimSpace(t.Name) == "" {
		return "name is required"
	}
	if t.Status == "" {
		t.Status = model.TaskPending
	}
	if !model.ValidTaskStatus(t.Status) {
		return "invalid status"
	}
	return ""
}

// Create handles POST /api/task/create.
func (h *TaskHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var t model.Task
	if err := c.Bind(&t); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := validateTask(&t); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	t.UserID = uid

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Tasks.Create(ctx, &t); err != nil {
		return writeRepoErr(c, err, "failed to create task")
	}
	return c.JSON(http.StatusCreated, t)
}

// Get handles GET /api/task/:id with notes, assistants and payments hydrated.
func (h *TaskHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.Tasks.GetByID(ctx, c.Param("id"), uid)
	if err != nil {
		return writeRepoErr(c, err, "failed to fetch task")
	}
	return c.JSON(http.StatusOK, t)
}

// List handles GET /api/task; status filters on the task state, date bounds
// apply to the scheduled date rather than the creation time.
func (h *TaskHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Tasks.List(ctx, uid, parseListQuery(c))
	if err != nil {
		return writeRepoErr(c, err, "failed to list tasks")
	}
	return c.JSON(http.StatusOK, list)
}

// Update handles PUT /api/task/modify/update/:id. Collections not present in
// the request are treated as empty and the stored ones removed.
func (h *TaskHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var t model.Task
	if err := c.Bind(&t); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := validateTask(&t); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	t.ID = c.Param("id")
	t.UserID = uid

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Tasks.Update(ctx, &t, uid); err != nil {
		return writeRepoErr(c, err, "failed to update task")
	}
	return c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /api/task/modify/delete/:id.
func (h *TaskHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Tasks.Delete(ctx, c.Param("id"), uid); err != nil {
		return writeRepoErr(c, err, "failed to delete task")
	}
	return c.NoContent(http.StatusNoContent)
}
