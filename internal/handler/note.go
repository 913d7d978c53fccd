package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ritualplanner/ritualplanner/internal/model"
	"github.com/ritualplanner/ritualplanner/internal/repository"
)

// NoteHandler serves CRUD for notes and reminders.
type NoteHandler struct {
	Notes *repository.NoteRepo
}

func NewNoteHandler(notes *repository.NoteRepo) *NoteHandler {
	return &NoteHandler{Notes: notes}
}

// Create handles POST /api/notes/create.
func (h *NoteHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var n model.Note
	if err := c.Bind(&n); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(n.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	n.UserID = uid

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Notes.Create(ctx, &n); err != nil {
		return writeRepoErr(c, err, "failed to create note")
	}
	return c.JSON(http.StatusCreated, n)
}

// Get handles GET /api/notes/:id.
func (h *NoteHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	n, err := h.Notes.GetByID(ctx, c.Param("id"), uid)
	if err != nil {
		return writeRepoErr(c, err, "failed to fetch note")
	}
	return c.JSON(http.StatusOK, n)
}

// List handles GET /api/notes.
func (h *NoteHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Notes.List(ctx, uid, parseListQuery(c))
	if err != nil {
		return writeRepoErr(c, err, "failed to list notes")
	}
	return c.JSON(http.StatusOK, list)
}

// Update handles PUT /api/notes/modify/update/:id.
func (h *NoteHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var n model.Note
	if err := c.Bind(&n); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(n.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	n.ID = c.Param("id")
	n.UserID = uid

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Notes.Update(ctx, &n, uid); err != nil {
		return writeRepoErr(c, err, "failed to update note")
	}
	return c.JSON(http.StatusOK, n)
}

// Delete handles DELETE /api/notes/modify/delete/:id. Notes still linked to
// a task respond 409.
func (h *NoteHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Notes.Delete(ctx, c.Param("id"), uid); err != nil {
		return writeRepoErr(c, err, "failed to delete note")
	}
	return c.NoContent(http.StatusNoContent)
}
