// Package handler implements the HTTP endpoints: auth flows plus one
// CRUD handler per entity family. Every owned-entity handler resolves the
// acting user id from the JWT middleware first and passes it down as the
// mandatory ownership scope.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ritualplanner/ritualplanner/internal/repository"
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

// getUserID extracts the authenticated user id set by the JWT middleware.
func getUserID(c echo.Context) (string, error) {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("no user_id in context")
}

// reqCtx derives a bounded context from the request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// parseListQuery reads the shared list filters from the query string.
// Missing or invalid pagination values are left for ListQuery.Normalize to
// clamp; date bounds arrive as epoch milliseconds.
func parseListQuery(c echo.Context) repository.ListQuery {
	q := repository.ListQuery{
		Search: c.QueryParam("search"),
		Status: c.QueryParam("status"),
	}
	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	q.Size, _ = strconv.Atoi(c.QueryParam("size"))
	if ms, err := strconv.ParseInt(c.QueryParam("startDate"), 10, 64); err == nil && ms > 0 {
		t := time.UnixMilli(ms).UTC()
		q.StartDate = &t
	}
	if ms, err := strconv.ParseInt(c.QueryParam("endDate"), 10, 64); err == nil && ms > 0 {
		t := time.UnixMilli(ms).UTC()
		q.EndDate = &t
	}
	return q
}

// writeRepoErr maps repository sentinels to HTTP responses. Unknown errors
// collapse into a generic failure message with the given prefix, e.g.
// "failed to create bill".
func writeRepoErr(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrClientNotFound),
		errors.Is(err, repository.ErrCoWorkerNotFound),
		errors.Is(err, repository.ErrNoteNotFound),
		errors.Is(err, repository.ErrTemplateNotFound),
		errors.Is(err, repository.ErrBillNotFound),
		errors.Is(err, repository.ErrTaskNotFound),
		errors.Is(err, repository.ErrPaymentNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": fallback})
}
