package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritualplanner/ritualplanner/internal/repository"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// newAuthedContext builds an echo context carrying the user id the JWT
// middleware would have set.
func newAuthedContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "u1")
	return c, rec
}

func TestClientCreateRequiresName(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewClientHandler(repository.NewClientRepo(db))

	c, rec := newAuthedContext(t, http.MethodPost, "/api/clients/create", `{"name":"  "}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientCreate(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewClientHandler(repository.NewClientRepo(db))

	now := time.Now().UTC()
	mock.ExpectExec(`INSERT INTO "Client"`).
		WithArgs(sqlmock.AnyArg(), "u1", "Sharma family", "sharma@b.c", "", "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT created_at, updated_at FROM "Client"`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	c, rec := newAuthedContext(t, http.MethodPost, "/api/clients/create",
		`{"name":"Sharma family","email":"sharma@b.c"}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Sharma family"`)
	// Timestamps go out as epoch millis, never as RFC 3339 strings.
	assert.NotContains(t, rec.Body.String(), now.Format("2006-01-02T"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientGetForbidden(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewClientHandler(repository.NewClientRepo(db))

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, user_id, name`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "name", "email", "phone", "address", "description", "created_at", "updated_at"}).
			AddRow("c1", "someone-else", "X", "", "", "", "", now, now))

	c, rec := newAuthedContext(t, http.MethodGet, "/api/clients/c1", "")
	c.SetParamNames("id")
	c.SetParamValues("c1")
	require.NoError(t, h.Get(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientGetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewClientHandler(repository.NewClientRepo(db))

	mock.ExpectQuery(`SELECT id, user_id, name`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	c, rec := newAuthedContext(t, http.MethodGet, "/api/clients/missing", "")
	c.SetParamNames("id")
	c.SetParamValues("missing")
	require.NoError(t, h.Get(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientListPassesFilters(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewClientHandler(repository.NewClientRepo(db))

	mock.ExpectQuery(`SELECT id, user_id, name`).
		WithArgs("u1", "%sharma%", 10, 0).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "name", "email", "phone", "address", "description", "created_at", "updated_at"}))

	c, rec := newAuthedContext(t, http.MethodGet, "/api/clients?search=Sharma", "")
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
