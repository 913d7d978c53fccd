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

// Create must write the aggregate in dependency order: task row, note links,
// each assistant's payment before its link row, then the main payment before
// its link row. sqlmock is ordered, so a wrong sequence fails the test.
func TestTaskCreateChildInsertOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepo(db, false)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "Task"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "TaskNote"`).
		WithArgs(sqlmock.AnyArg(), "n1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "Payment"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "TaskAssistant"`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "cw1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "Payment"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "TaskPayment"`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT created_at, updated_at FROM "Task"`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	task := &model.Task{
		UserID:  "u1",
		Name:    "Satyanarayan Katha",
		NoteIDs: []string{"n1"},
		Assistants: []model.TaskAssistant{
			{AssistantID: "cw1", Payment: &model.Payment{TotalAmount: 500, PaymentStatus: "PENDING"}},
		},
		Payment: &model.Payment{TotalAmount: 5000, PaymentStatus: "PENDING"},
	}
	require.NoError(t, repo.Create(context.Background(), task))

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, model.TaskPending, task.Status)
	assert.NotEmpty(t, task.Assistants[0].Payment.ID)
	assert.Equal(t, task.ID, task.Assistants[0].TaskID)
	assert.NotEmpty(t, task.Payment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectTaskUpdate(mock sqlmock.Sqlmock, cascade bool) {
	mock.ExpectQuery(`SELECT user_id FROM "Task"`).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "Task" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT payment_id FROM "TaskAssistant"`).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"payment_id"}).AddRow("p1"))
	mock.ExpectExec(`DELETE FROM "TaskNote"`).
		WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "TaskAssistant"`).
		WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "TaskPayment"`).
		WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	if cascade {
		mock.ExpectExec(`DELETE FROM "Payment"`).
			WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()
}

// An update that drops every child collection removes the link rows. What
// happens to the payment rows behind them depends on the cleanup policy:
// orphan keeps them, cascade deletes them inside the same transaction.
func TestTaskUpdatePaymentCleanup(t *testing.T) {
	for _, tc := range []struct {
		name    string
		cascade bool
	}{
		{"orphan keeps payment rows", false},
		{"cascade deletes payment rows", true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewTaskRepo(db, tc.cascade)

			expectTaskUpdate(mock, tc.cascade)

			task := &model.Task{ID: "t1", Name: "Katha", Status: model.TaskCompleted}
			require.NoError(t, repo.Update(context.Background(), task, "u1"))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// An update carrying a surviving assistant's existing payment id must not
// insert a duplicate payment row; it re-links the one already there.
func TestTaskUpdateReusesExistingPayment(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepo(db, false)

	mock.ExpectQuery(`SELECT user_id FROM "Task"`).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "Task" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT payment_id FROM "TaskAssistant"`).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"payment_id"}).AddRow("p1"))
	mock.ExpectExec(`DELETE FROM "TaskNote"`).
		WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "TaskAssistant"`).
		WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "TaskPayment"`).
		WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "Payment"`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO "TaskAssistant"`).
		WithArgs(sqlmock.AnyArg(), "t1", "cw1", "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	task := &model.Task{
		ID:     "t1",
		Name:   "Katha",
		Status: model.TaskPending,
		Assistants: []model.TaskAssistant{
			{AssistantID: "cw1", Payment: &model.Payment{ID: "p1", TotalAmount: 500}},
		},
	}
	require.NoError(t, repo.Update(context.Background(), task, "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskUpdateUnknownTask(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepo(db, false)

	mock.ExpectQuery(`SELECT user_id FROM "Task"`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	err := repo.Update(context.Background(), &model.Task{ID: "nope", Name: "x"}, "u1")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
