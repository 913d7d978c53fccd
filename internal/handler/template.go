package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ritualplanner/ritualplanner/internal/model"
	"github.com/ritualplanner/ritualplanner/internal/repository"
)

// TemplateHandler serves CRUD for ritual material templates. A template and
// its item lines are written as one aggregate; updates replace the whole
// item collection.
type TemplateHandler struct {
	Templates *repository.TemplateRepo
}

func NewTemplateHandler(templates *repository.TemplateRepo) *TemplateHandler {
	return &TemplateHandler{Templates: templates}
}

// Create handles POST /api/template/create.
func (h *TemplateHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var t model.Template
	if err := c.Bind(&t); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(t.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	t.UserID = uid

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Templates.Create(ctx, &t); err != nil {
		return writeRepoErr(c, err, "failed to create template")
	}
	return c.JSON(http.StatusCreated, t)
}

// Get handles GET /api/template/:id, items included.
func (h *TemplateHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.Templates.GetByID(ctx, c.Param("id"), uid)
	if err != nil {
		return writeRepoErr(c, err, "failed to fetch template")
	}
	return c.JSON(http.StatusOK, t)
}

// List handles GET /api/template. Rows carry no item collections; fetch a
// single template to hydrate them.
func (h *TemplateHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Templates.List(ctx, uid, parseListQuery(c))
	if err != nil {
		return writeRepoErr(c, err, "failed to list templates")
	}
	return c.JSON(http.StatusOK, list)
}

// Update handles PUT /api/template/modify/update/:id. The request carries the
// full desired item set; previous items are discarded.
func (h *TemplateHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var t model.Template
	if err := c.Bind(&t); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(t.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	t.ID = c.Param("id")
	t.UserID = uid

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Templates.Update(ctx, &t, uid); err != nil {
		return writeRepoErr(c, err, "failed to update template")
	}
	return c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /api/template/modify/delete/:id.
func (h *TemplateHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Templates.Delete(ctx, c.Param("id"), uid); err != nil {
		return writeRepoErr(c, err, "failed to delete template")
	}
	return c.NoContent(http.StatusNoContent)
}
