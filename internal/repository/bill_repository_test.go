package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritualplanner/ritualplanner/internal/model"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestBillCreateRecomputesTotal(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBillRepo(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	// 2*30+5 + 1*100 = 165, regardless of the client-sent total.
	mock.ExpectExec(`INSERT INTO "Bill"`).
		WithArgs(sqlmock.AnyArg(), "u1", "Griha Pravesh", nil, 165.0, "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "ItemBill"`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "ghee", 2.0, "kg", 30.0, 5.0, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "ItemBill"`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "flowers", 1.0, "set", 100.0, 0.0, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT created_at, updated_at FROM "Bill"`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	b := &model.Bill{
		UserID:      "u1",
		Name:        "Griha Pravesh",
		TotalAmount: 9999, // must be overwritten
		Items: []model.ItemBill{
			{ItemName: "ghee", Quantity: 2, Unit: "kg", MarketRate: 30, ExtraCharges: 5},
			{ItemName: "flowers", Quantity: 1, Unit: "set", MarketRate: 100},
		},
	}
	require.NoError(t, repo.Create(context.Background(), b))

	assert.Equal(t, 165.0, b.TotalAmount)
	assert.NotEmpty(t, b.ID)
	for _, it := range b.Items {
		assert.NotEmpty(t, it.ID)
		assert.Equal(t, b.ID, it.BillID)
	}
	assert.False(t, b.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBillUpdateReplacesItemSet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBillRepo(db)

	mock.ExpectQuery(`SELECT user_id FROM "Bill"`).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "Bill" SET`).
		WithArgs("Consecration", nil, 50.0, "PAID", "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Old items are dropped wholesale before the new set goes in.
	mock.ExpectExec(`DELETE FROM "ItemBill"`).
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO "ItemBill"`).
		WithArgs(sqlmock.AnyArg(), "b1", "incense", 5.0, "pack", 10.0, 0.0, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b := &model.Bill{
		ID:            "b1",
		Name:          "Consecration",
		PaymentStatus: "PAID",
		Items: []model.ItemBill{
			{ItemName: "incense", Quantity: 5, Unit: "pack", MarketRate: 10},
		},
	}
	require.NoError(t, repo.Update(context.Background(), b, "u1"))
	assert.Equal(t, 50.0, b.TotalAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBillUpdateOtherOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBillRepo(db)

	mock.ExpectQuery(`SELECT user_id FROM "Bill"`).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("someone-else"))

	err := repo.Update(context.Background(), &model.Bill{ID: "b1", Name: "x"}, "u1")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBillGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBillRepo(db)

	mock.ExpectQuery(`SELECT id, user_id, name, template_id`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing", "u1")
	assert.ErrorIs(t, err, ErrBillNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
