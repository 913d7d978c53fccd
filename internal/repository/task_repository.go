package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ritualplanner/ritualplanner/internal/model"
)

// TaskRepo persists the task aggregate: the "Task" row plus its "TaskNote"
// join rows, "TaskAssistant" rows (each optionally carrying its own payment)
// and the single main "TaskPayment" link. All child collections are replace
// sets.
//
// cascadePayments controls what happens to payment rows whose link is
// removed by an update or delete: false keeps them as unreferenced
// historical records (legacy behavior), true deletes them with the links.
type TaskRepo struct {
	db              *sql.DB
	cascadePayments bool
}

func NewTaskRepo(db *sql.DB, cascadePayments bool) *TaskRepo {
	return &TaskRepo{db: db, cascadePayments: cascadePayments}
}

const taskCols = `id, user_id, task_owner_id, name, description, date, starttime, endtime,
	self, location, status, client_id, template_id, bill_id, created_at, updated_at`

func scanTask(scan func(dest ...any) error) (model.Task, error) {
	var t model.Task
	var owner, client, tmpl, bill sql.NullString
	var date, start, end sql.NullTime
	err := scan(&t.ID, &t.UserID, &owner, &t.Name, &t.Description, &date, &start, &end,
		&t.Self, &t.Location, &t.Status, &client, &tmpl, &bill,
		&t.CreatedAt.Time, &t.UpdatedAt.Time)
	t.TaskOwnerID = fromNullStr(owner)
	t.ClientID = fromNullStr(client)
	t.TemplateID = fromNullStr(tmpl)
	t.BillID = fromNullStr(bill)
	t.Date = fromNullTime(date)
	t.StartTime = fromNullTime(start)
	t.EndTime = fromNullTime(end)
	return t, err
}

// Create persists the whole aggregate inside one transaction:
//
//  1. insert the task row
//  2. insert a "TaskNote" join row per referenced note
//  3. per assistant, insert its payment row first (when present), then the
//     "TaskAssistant" row linking co-worker and payment
//  4. insert the main payment and its "TaskPayment" link row
//
// Ids are generated wherever absent and every child's foreign key is
// backfilled. Any single failure aborts the entire write; no partial commit
// is ever visible.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	t.ID = ensureID(t.ID)
	if t.Status == "" {
		t.Status = model.TaskPending
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO "Task" (id, user_id, task_owner_id, name, description, date, starttime, endtime,
		 self, location, status, client_id, template_id, bill_id)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		t.ID, t.UserID, nullStr(t.TaskOwnerID), t.Name, t.Description,
		nullTime(t.Date), nullTime(t.StartTime), nullTime(t.EndTime),
		t.Self, t.Location, t.Status,
		nullStr(t.ClientID), nullStr(t.TemplateID), nullStr(t.BillID))
	if err != nil {
		return err
	}
	if err := r.insertChildrenTx(ctx, tx, t); err != nil {
		return err
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM "Task" WHERE id = $1`, t.ID).
		Scan(&t.CreatedAt.Time, &t.UpdatedAt.Time); err != nil {
		return err
	}
	return tx.Commit()
}

// Update rewrites the task row and replaces every child collection inside
// one transaction. This is a destructive replace, not a merge: a note link,
// assistant or payment omitted from t is removed. Payment rows behind the
// removed links are deleted only under the cascade policy; otherwise they
// stay behind unreferenced.
func (r *TaskRepo) Update(ctx context.Context, t *model.Task, userID string) error {
	if err := r.checkOwner(ctx, t.ID, userID); err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`UPDATE "Task" SET task_owner_id=$1, name=$2, description=$3, date=$4, starttime=$5, endtime=$6,
		 self=$7, location=$8, status=$9, client_id=$10, template_id=$11, bill_id=$12, updated_at=now()
		 WHERE id=$13`,
		nullStr(t.TaskOwnerID), t.Name, t.Description,
		nullTime(t.Date), nullTime(t.StartTime), nullTime(t.EndTime),
		t.Self, t.Location, t.Status,
		nullStr(t.ClientID), nullStr(t.TemplateID), nullStr(t.BillID), t.ID)
	if err != nil {
		return err
	}

	// Collect the payment ids behind the old links before dropping them so
	// the cascade policy can remove the rows afterwards.
	oldPayments, err := linkedPaymentIDsTx(ctx, tx, t.ID)
	if err != nil {
		return err
	}
	for _, q := range []string{
		`DELETE FROM "TaskNote" WHERE task_id = $1`,
		`DELETE FROM "TaskAssistant" WHERE task_id = $1`,
		`DELETE FROM "TaskPayment" WHERE task_id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, q, t.ID); err != nil {
			return err
		}
	}
	if r.cascadePayments {
		for _, pid := range oldPayments {
			if _, err := tx.ExecContext(ctx, `DELETE FROM "Payment" WHERE id = $1`, pid); err != nil {
				return err
			}
		}
	}
	if err := r.insertChildrenTx(ctx, tx, t); err != nil {
		return err
	}
	return tx.Commit()
}

// insertChildrenTx writes the note links, assistants with their payments,
// and the main payment link for the task. Shared by Create and Update.
func (r *TaskRepo) insertChildrenTx(ctx context.Context, tx *sql.Tx, t *model.Task) error {
	for _, noteID := range t.NoteIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO "TaskNote" (task_id, note_id) VALUES ($1,$2)`, t.ID, noteID); err != nil {
			return err
		}
	}
	for i := range t.Assistants {
		a := &t.Assistants[i]
		a.ID = ensureID(a.ID)
		a.TaskID = t.ID
		var paymentID any
		if a.Payment != nil {
			// Assistant payment row goes in first so the link row can
			// reference it.
			if a.Payment.ID != "" {
				// Reuse: an update request may carry the surviving
				// assistant's existing payment. Insert only when the row
				// does not exist yet.
				var n int
				if err := tx.QueryRowContext(ctx,
					`SELECT COUNT(*) FROM "Payment" WHERE id = $1`, a.Payment.ID).Scan(&n); err != nil {
					return err
				}
				if n == 0 {
					if err := insertPaymentTx(ctx, tx, a.Payment); err != nil {
						return err
					}
				}
			} else if err := insertPaymentTx(ctx, tx, a.Payment); err != nil {
				return err
			}
			paymentID = a.Payment.ID
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO "TaskAssistant" (id, task_id, assistant_id, payment_id) VALUES ($1,$2,$3,$4)`,
			a.ID, t.ID, a.AssistantID, paymentID); err != nil {
			return err
		}
	}
	if t.Payment != nil {
		if t.Payment.ID != "" {
			var n int
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM "Payment" WHERE id = $1`, t.Payment.ID).Scan(&n); err != nil {
				return err
			}
			if n == 0 {
				if err := insertPaymentTx(ctx, tx, t.Payment); err != nil {
					return err
				}
			}
		} else if err := insertPaymentTx(ctx, tx, t.Payment); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO "TaskPayment" (task_id, payment_id) VALUES ($1,$2)`,
			t.ID, t.Payment.ID); err != nil {
			return err
		}
	}
	return nil
}

// linkedPaymentIDsTx returns every payment id referenced by the task's
// current assistant and main-payment link rows.
func linkedPaymentIDsTx(ctx context.Context, tx *sql.Tx, taskID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT payment_id FROM "TaskAssistant" WHERE task_id = $1 AND payment_id IS NOT NULL
		 UNION
		 SELECT payment_id FROM "TaskPayment" WHERE task_id = $1`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetByID fetches the full aggregate: task row, note ids, assistants with
// their payments resolved, and the main payment when a "TaskPayment" link
// exists.
func (r *TaskRepo) GetByID(ctx context.Context, id, userID string) (*model.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskCols+` FROM "Task" WHERE id = $1`, id)
	t, err := scanTask(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, ErrForbidden
	}

	t.NoteIDs = []string{}
	noteRows, err := r.db.QueryContext(ctx,
		`SELECT note_id FROM "TaskNote" WHERE task_id = $1 ORDER BY created_at ASC`, id)
	if err != nil {
		return nil, err
	}
	defer noteRows.Close()
	for noteRows.Next() {
		var nid string
		if err := noteRows.Scan(&nid); err != nil {
			return nil, err
		}
		t.NoteIDs = append(t.NoteIDs, nid)
	}
	if err := noteRows.Err(); err != nil {
		return nil, err
	}

	t.Assistants = []model.TaskAssistant{}
	aRows, err := r.db.QueryContext(ctx,
		`SELECT ta.id, ta.task_id, ta.assistant_id, ta.payment_id,
		        p.id, p.totalamount, p.paidamount, p.paymentdate, p.paymentmode,
		        p.onlinepaymentmode, p.paymentstatus, p.created_at, p.updated_at
		 FROM "TaskAssistant" ta
		 LEFT JOIN "Payment" p ON p.id = ta.payment_id
		 WHERE ta.task_id = $1 ORDER BY ta.created_at ASC`, id)
	if err != nil {
		return nil, err
	}
	defer aRows.Close()
	for aRows.Next() {
		var a model.TaskAssistant
		var linkPayment, pid, pmode, ponline, pstatus sql.NullString
		var ptotal, ppaid sql.NullFloat64
		var pdate, pcreated, pupdated sql.NullTime
		if err := aRows.Scan(&a.ID, &a.TaskID, &a.AssistantID, &linkPayment,
			&pid, &ptotal, &ppaid, &pdate, &pmode, &ponline, &pstatus, &pcreated, &pupdated); err != nil {
			return nil, err
		}
		if pid.Valid {
			a.Payment = &model.Payment{
				ID:                pid.String,
				TotalAmount:       ptotal.Float64,
				PaidAmount:        ppaid.Float64,
				PaymentDate:       fromNullTime(pdate),
				PaymentMode:       fromNullStr(pmode),
				OnlinePaymentMode: fromNullStr(ponline),
				PaymentStatus:     fromNullStr(pstatus),
				CreatedAt:         fromNullTime(pcreated),
				UpdatedAt:         fromNullTime(pupdated),
			}
		}
		t.Assistants = append(t.Assistants, a)
	}
	if err := aRows.Err(); err != nil {
		return nil, err
	}

	pRow := r.db.QueryRowContext(ctx,
		`SELECT `+paymentCols+` FROM "Payment"
		 WHERE id = (SELECT payment_id FROM "TaskPayment" WHERE task_id = $1)`, id)
	p, err := scanPayment(pRow.Scan)
	if err == nil {
		t.Payment = &p
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return &t, nil
}

// List returns the owner's tasks as flat parent rows: no note ids,
// assistants or payments hydrated. The status filter matches the task
// status column and the date range bounds the scheduled date.
func (r *TaskRepo) List(ctx context.Context, userID string, q ListQuery) ([]model.Task, error) {
	q.Normalize()
	cond, args := q.where(userID, []string{"name", "description"}, "status", "date")
	cond, args = q.page(cond, args)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskCols+` FROM "Task" WHERE `+cond, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Delete removes the task and its link rows inside one transaction. Payment
// rows behind the links follow the cascade policy, the same as on update.
func (r *TaskRepo) Delete(ctx context.Context, id, userID string) error {
	if err := r.checkOwner(ctx, id, userID); err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	oldPayments, err := linkedPaymentIDsTx(ctx, tx, id)
	if err != nil {
		return err
	}
	// Link rows ("TaskNote", "TaskAssistant", "TaskPayment") go with the
	// task via the FK cascade.
	if _, err := tx.ExecContext(ctx, `DELETE FROM "Task" WHERE id = $1`, id); err != nil {
		return err
	}
	if r.cascadePayments {
		for _, pid := range oldPayments {
			if _, err := tx.ExecContext(ctx, `DELETE FROM "Payment" WHERE id = $1`, pid); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func (r *TaskRepo) checkOwner(ctx context.Context, id, userID string) error {
	var owner string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM "Task" WHERE id = $1`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTaskNotFound
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrForbidden
	}
	return nil
}
