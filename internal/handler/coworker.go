package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ritualplanner/ritualplanner/internal/model"
	"github.com/ritualplanner/ritualplanner/internal/notify"
	"github.com/ritualplanner/ritualplanner/internal/queue"
	"github.com/ritualplanner/ritualplanner/internal/repository"
)

// CoWorkerHandler serves CRUD for the practitioner's co-workers. Adding a
// co-worker with an email address triggers an invite mail.
type CoWorkerHandler struct {
	CoWorkers *repository.CoWorkerRepo
	Users     *repository.UserRepo
}

func NewCoWorkerHandler(coworkers *repository.CoWorkerRepo, users *repository.UserRepo) *CoWorkerHandler {
	return &CoWorkerHandler{CoWorkers: coworkers, Users: users}
}

// Create handles POST /api/coworker/create.
func (h *CoWorkerHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var w model.CoWorker
	if err := c.Bind(&w); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(w.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	w.UserID = uid

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.CoWorkers.Create(ctx, &w); err != nil {
		return writeRepoErr(c, err, "failed to create coworker")
	}

	if w.Email != "" {
		inviter := ""
		if u, err := h.Users.GetByID(ctx, uid); err == nil {
			inviter = u.Name
		}
		go func(to, name, inviterName string) {
			_ = notify.PublishEmail(context.Background(), queue.EmailRequestedEvent{
				Kind: queue.EmailInvite,
				To:   to,
				Data: map[string]string{"Name": name, "InviterName": inviterName},
			})
		}(w.Email, w.Name, inviter)
	}

	return c.JSON(http.StatusCreated, w)
}

// Get handles GET /api/coworker/:id.
func (h *CoWorkerHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	w, err := h.CoWorkers.GetByID(ctx, c.Param("id"), uid)
	if err != nil {
		return writeRepoErr(c, err, "failed to fetch coworker")
	}
	return c.JSON(http.StatusOK, w)
}

// List handles GET /api/coworker.
func (h *CoWorkerHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.CoWorkers.List(ctx, uid, parseListQuery(c))
	if err != nil {
		return writeRepoErr(c, err, "failed to list coworkers")
	}
	return c.JSON(http.StatusOK, list)
}

// Update handles PUT /api/coworker/modify/update/:id.
func (h *CoWorkerHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var w model.CoWorker
	if err := c.Bind(&w); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(w.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	w.ID = c.Param("id")
	w.UserID = uid

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.CoWorkers.Update(ctx, &w, uid); err != nil {
		return writeRepoErr(c, err, "failed to update coworker")
	}
	return c.JSON(http.StatusOK, w)
}

// Delete handles DELETE /api/coworker/modify/delete/:id.
func (h *CoWorkerHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.CoWorkers.Delete(ctx, c.Param("id"), uid); err != nil {
		return writeRepoErr(c, err, "failed to delete coworker")
	}
	return c.NoContent(http.StatusNoContent)
}
