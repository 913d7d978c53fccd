package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ritualplanner/ritualplanner/internal/model"
)

// BillRepo persists bills together with their priced item rows. Items follow
// the same replace-on-update rule as template items. The bill total is
// recomputed from the items on every write; a client-supplied totalamount is
// overwritten, never trusted.
type BillRepo struct{ db *sql.DB }

func NewBillRepo(db *sql.DB) *BillRepo { return &BillRepo{db: db} }

const billCols = `id, user_id, name, template_id, totalamount, paymentstatus, created_at, updated_at`

func scanBill(scan func(dest ...any) error) (model.Bill, error) {
	var b model.Bill
	var tmpl sql.NullString
	err := scan(&b.ID, &b.UserID, &b.Name, &tmpl, &b.TotalAmount, &b.PaymentStatus,
		&b.CreatedAt.Time, &b.UpdatedAt.Time)
	b.TemplateID = fromNullStr(tmpl)
	return b, err
}

// Create inserts the bill and all of its items inside one transaction,
// generating missing ids and backfilling each item's bill_id.
func (r *BillRepo) Create(ctx context.Context, b *model.Bill) error {
	b.ID = ensureID(b.ID)
	b.TotalAmount = model.BillTotal(b.Items)
	if b.PaymentStatus == "" {
		b.PaymentStatus = "PENDING"
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO "Bill" (id, user_id, name, template_id, totalamount, paymentstatus) VALUES ($1,$2,$3,$4,$5,$6)`,
		b.ID, b.UserID, b.Name, nullStr(b.TemplateID), b.TotalAmount, b.PaymentStatus)
	if err != nil {
		return err
	}
	if err := insertBillItemsTx(ctx, tx, b.ID, b.Items); err != nil {
		return err
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM "Bill" WHERE id = $1`, b.ID).
		Scan(&b.CreatedAt.Time, &b.UpdatedAt.Time); err != nil {
		return err
	}
	return tx.Commit()
}

// Update rewrites the parent fields and replaces the full item set inside
// one transaction. The total is recomputed from the replacement items.
func (r *BillRepo) Update(ctx context.Context, b *model.Bill, userID string) error {
	if err := r.checkOwner(ctx, b.ID, userID); err != nil {
		return err
	}
	b.TotalAmount = model.BillTotal(b.Items)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`UPDATE "Bill" SET name=$1, template_id=$2, totalamount=$3, paymentstatus=$4, updated_at=now() WHERE id=$5`,
		b.Name, nullStr(b.TemplateID), b.TotalAmount, b.PaymentStatus, b.ID)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM "ItemBill" WHERE bill_id = $1`, b.ID); err != nil {
		return err
	}
	if err := insertBillItemsTx(ctx, tx, b.ID, b.Items); err != nil {
		return err
	}
	return tx.Commit()
}

func insertBillItemsTx(ctx context.Context, tx *sql.Tx, billID string, items []model.ItemBill) error {
	for i := range items {
		items[i].ID = ensureID(items[i].ID)
		items[i].BillID = billID
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO "ItemBill" (id, bill_id, itemname, quantity, unit, marketrate, extracharges, note)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			items[i].ID, billID, items[i].ItemName, items[i].Quantity, items[i].Unit,
			items[i].MarketRate, items[i].ExtraCharges, items[i].Note); err != nil {
			return err
		}
	}
	return nil
}

// GetByID fetches a bill with its items hydrated in creation order.
func (r *BillRepo) GetByID(ctx context.Context, id, userID string) (*model.Bill, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+billCols+` FROM "Bill" WHERE id = $1`, id)
	b, err := scanBill(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBillNotFound
	}
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, bill_id, itemname, quantity, unit, marketrate, extracharges, note
		 FROM "ItemBill" WHERE bill_id = $1 ORDER BY created_at ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	b.Items = []model.ItemBill{}
	for rows.Next() {
		var it model.ItemBill
		if err := rows.Scan(&it.ID, &it.BillID, &it.ItemName, &it.Quantity, &it.Unit,
			&it.MarketRate, &it.ExtraCharges, &it.Note); err != nil {
			return nil, err
		}
		b.Items = append(b.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns the owner's bills as flat parent rows.
func (r *BillRepo) List(ctx context.Context, userID string, q ListQuery) ([]model.Bill, error) {
	q.Normalize()
	cond, args := q.where(userID, []string{"name"}, "paymentstatus", "created_at")
	cond, args = q.page(cond, args)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+billCols+` FROM "Bill" WHERE `+cond, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Bill{}
	for rows.Next() {
		b, err := scanBill(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Delete removes a bill owned by userID; item rows go with it via the FK
// cascade.
func (r *BillRepo) Delete(ctx context.Context, id, userID string) error {
	if err := r.checkOwner(ctx, id, userID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM "Bill" WHERE id = $1`, id)
	return err
}

func (r *BillRepo) checkOwner(ctx context.Context, id, userID string) error {
	var owner string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM "Bill" WHERE id = $1`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBillNotFound
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrForbidden
	}
	return nil
}
