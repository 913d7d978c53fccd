package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ritualplanner/ritualplanner/internal/model"
	"github.com/ritualplanner/ritualplanner/internal/repository"
)

// ClientHandler serves CRUD for the practitioner's clients.
type ClientHandler struct {
	Clients *repository.ClientRepo
}

func NewClientHandler(clients *repository.ClientRepo) *ClientHandler {
	return &ClientHandler{Clients: clients}
}

// Create handles POST /api/client/create.
func (h *ClientHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var cl model.Client
	if err := c.Bind(&cl); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(cl.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	cl.UserID = uid

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Clients.Create(ctx, &cl); err != nil {
		return writeRepoErr(c, err, "failed to create client")
	}
	return c.JSON(http.StatusCreated, cl)
}

// Get handles GET /api/client/:id.
func (h *ClientHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	cl, err := h.Clients.GetByID(ctx, c.Param("id"), uid)
	if err != nil {
		return writeRepoErr(c, err, "failed to fetch client")
	}
	return c.JSON(http.StatusOK, cl)
}

// List handles GET /api/client with search and pagination filters.
func (h *ClientHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Clients.List(ctx, uid, parseListQuery(c))
	if err != nil {
		return writeRepoErr(c, err, "failed to list clients")
	}
	return c.JSON(http.StatusOK, list)
}

// Update handles PUT /api/client/modify/update/:id.
func (h *ClientHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var cl model.Client
	if err := c.Bind(&cl); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(cl.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	cl.ID = c.Param("id")
	cl.UserID = uid

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Clients.Update(ctx, &cl, uid); err != nil {
		return writeRepoErr(c, err, "failed to update client")
	}
	return c.JSON(http.StatusOK, cl)
}

// Delete handles DELETE /api/client/modify/delete/:id.
func (h *ClientHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Clients.Delete(ctx, c.Param("id"), uid); err != nil {
		return writeRepoErr(c, err, "failed to delete client")
	}
	return c.NoContent(http.StatusNoContent)
}
