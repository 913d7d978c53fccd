package middleware

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritualplanner/ritualplanner/internal/repository"
	"github.com/ritualplanner/ritualplanner/internal/utils"
)

const testSecret = "test-secret"

func runJWT(t *testing.T, db *sql.DB, authHeader string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	handler := JWTAuth(testSecret, repository.NewUserRepo(db))(func(c echo.Context) error {
		reached = true
		assert.Equal(t, "u1", c.Get("user_id"))
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, reached
}

func userRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(
		[]string{"id", "name", "email", "phone", "city", "state", "zipcode", "created_at", "updated_at"}).
		AddRow("u1", "Asha", "a@b.c", "", "", "", "", now, now)
}

func TestJWTAuthValidToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at, err := utils.NewAccessToken(testSecret, "u1", "a@b.c", 15)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT id, name, email`).
		WithArgs("u1").
		WillReturnRows(userRow(time.Now().UTC()))

	rec, reached := runJWT(t, db, "Bearer "+at.Token)
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJWTAuthRejectsMalformedHeader(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, header := range []string{"", "Token abc", "bearer abc", "Bearer ", "Bearer  "} {
		rec, reached := runJWT(t, db, header)
		assert.False(t, reached, "header %q must not pass", header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at, err := utils.NewAccessToken("other-secret", "u1", "a@b.c", 15)
	require.NoError(t, err)

	rec, reached := runJWT(t, db, "Bearer "+at.Token)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// A token for a deleted account must not pass even though the signature is
// still valid.
func TestJWTAuthRejectsUnknownUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at, err := utils.NewAccessToken(testSecret, "u1", "a@b.c", 15)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT id, name, email`).
		WithArgs("u1").
		WillReturnError(sql.ErrNoRows)

	rec, reached := runJWT(t, db, "Bearer "+at.Token)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
