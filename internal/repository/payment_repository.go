package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ritualplanner/ritualplanner/internal/model"
)

// PaymentRepo manages standalone payment rows. Payments carry no user_id;
// they are reached through "TaskPayment" and "TaskAssistant" link rows, so
// ownership checks go through the linked task.
type PaymentRepo struct{ db *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentCols = `id, totalamount, paidamount, paymentdate, paymentmode, onlinepaymentmode, paymentstatus, created_at, updated_at`

func scanPayment(scan func(dest ...any) error) (model.Payment, error) {
	var p model.Payment
	var date sql.NullTime
	err := scan(&p.ID, &p.TotalAmount, &p.PaidAmount, &date, &p.PaymentMode,
		&p.OnlinePaymentMode, &p.PaymentStatus, &p.CreatedAt.Time, &p.UpdatedAt.Time)
	p.PaymentDate = fromNullTime(date)
	return p, err
}

// insertPaymentTx inserts a payment within a transaction. Shared with the
// task aggregate, which creates payments alongside their link rows.
func insertPaymentTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	p.ID = ensureID(p.ID)
	_, err := tx.ExecContext(ctx,
		`INSERT INTO "Payment" (id, totalamount, paidamount, paymentdate, paymentmode, onlinepaymentmode, paymentstatus)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.TotalAmount, p.PaidAmount, nullTime(p.PaymentDate),
		p.PaymentMode, p.OnlinePaymentMode, p.PaymentStatus)
	return err
}

// GetByID fetches a payment by id, provided it is reachable from one of the
// user's tasks.
func (r *PaymentRepo) GetByID(ctx context.Context, id, userID string) (*model.Payment, error) {
	if err := r.checkReachable(ctx, id, userID); err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+paymentCols+` FROM "Payment" WHERE id = $1`, id)
	p, err := scanPayment(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListForUser returns payments reachable from the user's tasks, either as a
// task's main payment or through an assistant row, in creation order.
func (r *PaymentRepo) ListForUser(ctx context.Context, userID string, q ListQuery) ([]model.Payment, error) {
	q.Normalize()
	const sel = `SELECT DISTINCT p.id, p.totalamount, p.paidamount, p.paymentdate, p.paymentmode,
	                    p.onlinepaymentmode, p.paymentstatus, p.created_at, p.updated_at
	             FROM "Payment" p
	             LEFT JOIN "TaskPayment" tp ON tp.payment_id = p.id
	             LEFT JOIN "TaskAssistant" ta ON ta.payment_id = p.id
	             LEFT JOIN "Task" t ON t.id = COALESCE(tp.task_id, ta.task_id)
	             WHERE t.user_id = $1
	             ORDER BY p.created_at ASC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, sel, userID, q.Limit(), q.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update rewrites a payment's fields, provided it is reachable from one of
// the user's tasks.
func (r *PaymentRepo) Update(ctx context.Context, p *model.Payment, userID string) error {
	if err := r.checkReachable(ctx, p.ID, userID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE "Payment" SET totalamount=$1, paidamount=$2, paymentdate=$3, paymentmode=$4,
		 onlinepaymentmode=$5, paymentstatus=$6, updated_at=now() WHERE id=$7`,
		p.TotalAmount, p.PaidAmount, nullTime(p.PaymentDate), p.PaymentMode,
		p.OnlinePaymentMode, p.PaymentStatus, p.ID)
	return err
}

// Delete removes a payment that is reachable from one of the user's tasks
// and not referenced by any remaining link row.
func (r *PaymentRepo) Delete(ctx context.Context, id, userID string) error {
	if err := r.checkReachable(ctx, id, userID); err != nil {
		return err
	}
	var linked int
	if err := r.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM "TaskPayment" WHERE payment_id = $1)
		      + (SELECT COUNT(*) FROM "TaskAssistant" WHERE payment_id = $1)`, id).Scan(&linked); err != nil {
		return err
	}
	if linked > 0 {
		return ErrConflict
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM "Payment" WHERE id = $1`, id)
	return err
}

// checkReachable verifies the payment exists and is linked to a task owned
// by userID. Orphaned payments (no link rows) belong to nobody and cannot be
// modified through the API.
func (r *PaymentRepo) checkReachable(ctx context.Context, id, userID string) error {
	var exists int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM "Payment" WHERE id = $1`, id).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return ErrPaymentNotFound
	}
	var owned int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM "Payment" p
		 LEFT JOIN "TaskPayment" tp ON tp.payment_id = p.id
		 LEFT JOIN "TaskAssistant" ta ON ta.payment_id = p.id
		 JOIN "Task" t ON t.id = COALESCE(tp.task_id, ta.task_id)
		 WHERE p.id = $1 AND t.user_id = $2`, id, userID).Scan(&owned)
	if err != nil {
		return err
	}
	if owned == 0 {
		return ErrForbidden
	}
	return nil
}
