package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ritualplanner/ritualplanner/internal/model"
)

// TemplateRepo persists ritual templates together with their item rows.
// Items are a replace set: Update deletes every existing "ItemTemplate" row
// for the template and reinserts the supplied collection. A child omitted
// from an update request is gone for good.
type TemplateRepo struct{ db *sql.DB }

func NewTemplateRepo(db *sql.DB) *TemplateRepo { return &TemplateRepo{db: db} }

// Create inserts the template and all of its items inside one transaction.
// Ids are generated for the parent and any item lacking one, and each item's
// template_id is backfilled with the parent id. Any failure rolls the whole
// write back.
func (r *TemplateRepo) Create(ctx context.Context, t *model.Template) error {
	t.ID = ensureID(t.ID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO "Template" (id, user_id, name, description) VALUES ($1,$2,$3,$4)`,
		t.ID, t.UserID, t.Name, t.Description)
	if err != nil {
		return err
	}
	if err := insertTemplateItemsTx(ctx, tx, t.ID, t.Items); err != nil {
		return err
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM "Template" WHERE id = $1`, t.ID).
		Scan(&t.CreatedAt.Time, &t.UpdatedAt.Time); err != nil {
		return err
	}
	return tx.Commit()
}

// Update rewrites the parent fields and replaces the full item set inside
// one transaction (delete-all-then-reinsert, not a diff).
func (r *TemplateRepo) Update(ctx context.Context, t *model.Template, userID string) error {
	if err := r.checkOwner(ctx, t.ID, userID); err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`UPDATE "Template" SET name=$1, description=$2, updated_at=now() WHERE id=$3`,
		t.Name, t.Description, t.ID)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM "ItemTemplate" WHERE template_id = $1`, t.ID); err != nil {
		return err
	}
	if err := insertTemplateItemsTx(ctx, tx, t.ID, t.Items); err != nil {
		return err
	}
	return tx.Commit()
}

// insertTemplateItemsTx inserts the item rows one by one, generating ids for
// items that lack one and pinning template_id to the parent.
func insertTemplateItemsTx(ctx context.Context, tx *sql.Tx, templateID string, items []model.ItemTemplate) error {
	for i := range items {
		items[i].ID = ensureID(items[i].ID)
		items[i].TemplateID = templateID
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO "ItemTemplate" (id, template_id, itemname, quantity, unit) VALUES ($1,$2,$3,$4,$5)`,
			items[i].ID, templateID, items[i].ItemName, items[i].Quantity, items[i].Unit); err != nil {
			return err
		}
	}
	return nil
}

// GetByID fetches a template with its items hydrated in creation order.
func (r *TemplateRepo) GetByID(ctx context.Context, id, userID string) (*model.Template, error) {
	var t model.Template
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, description, created_at, updated_at FROM "Template" WHERE id = $1`, id).
		Scan(&t.ID, &t.UserID, &t.Name, &t.Description, &t.CreatedAt.Time, &t.UpdatedAt.Time)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, ErrForbidden
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, template_id, itemname, quantity, unit FROM "ItemTemplate" WHERE template_id = $1 ORDER BY created_at ASC`,
		id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	t.Items = []model.ItemTemplate{}
	for rows.Next() {
		var it model.ItemTemplate
		if err := rows.Scan(&it.ID, &it.TemplateID, &it.ItemName, &it.Quantity, &it.Unit); err != nil {
			return nil, err
		}
		t.Items = append(t.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns the owner's templates as flat parent rows; items are not
// hydrated, callers use GetByID when they need them.
func (r *TemplateRepo) List(ctx context.Context, userID string, q ListQuery) ([]model.Template, error) {
	q.Normalize()
	cond, args := q.where(userID, []string{"name", "description"}, "", "")
	cond, args = q.page(cond, args)
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, description, created_at, updated_at FROM "Template" WHERE `+cond, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Template{}
	for rows.Next() {
		var t model.Template
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Description,
			&t.CreatedAt.Time, &t.UpdatedAt.Time); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Delete removes a template owned by userID; item rows go with it via the
// FK cascade.
func (r *TemplateRepo) Delete(ctx context.Context, id, userID string) error {
	if err := r.checkOwner(ctx, id, userID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM "Template" WHERE id = $1`, id)
	return err
}

func (r *TemplateRepo) checkOwner(ctx context.Context, id, userID string) error {
	var owner string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM "Template" WHERE id = $1`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTemplateNotFound
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrForbidden
	}
	return nil
}
