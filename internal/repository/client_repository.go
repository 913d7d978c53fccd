package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ritualplanner/ritualplanner/internal/model"
)

// ClientRepo manages persistence for the practitioner's clients.
type ClientRepo struct{ db *sql.DB }

func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{db: db} }

const clientCols = `id, user_id, name, email, phone, address, description, created_at, updated_at`

// Create inserts a client row. The id is generated when absent and assigned
// back to c; the row is re-read to pick up DB-default timestamps.
func (r *ClientRepo) Create(ctx context.Context, c *model.Client) error {
	c.ID = ensureID(c.ID)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO "Client" (id, user_id, name, email, phone, address, description) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		c.ID, c.UserID, c.Name, c.Email, c.Phone, c.Address, c.Description)
	if err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM "Client" WHERE id = $1`, c.ID).
		Scan(&c.CreatedAt.Time, &c.UpdatedAt.Time)
}

// GetByID fetches a client owned by userID. Rows owned by someone else are
// reported as ErrForbidden, absent rows as ErrClientNotFound.
func (r *ClientRepo) GetByID(ctx context.Context, id, userID string) (*model.Client, error) {
	var c model.Client
	err := r.db.QueryRowContext(ctx,
		`SELECT `+clientCols+` FROM "Client" WHERE id = $1`, id).
		Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Description,
			&c.CreatedAt.Time, &c.UpdatedAt.Time)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, ErrForbidden
	}
	return &c, nil
}

// List returns the owner's clients matching the query filters, in creation
// order. Children are never hydrated on list.
func (r *ClientRepo) List(ctx context.Context, userID string, q ListQuery) ([]model.Client, error) {
	q.Normalize()
	cond, args := q.where(userID, []string{"name", "description"}, "", "")
	cond, args = q.page(cond, args)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+clientCols+` FROM "Client" WHERE `+cond, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Client{}
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Address,
			&c.Description, &c.CreatedAt.Time, &c.UpdatedAt.Time); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update rewrites the mutable fields of a client owned by userID.
func (r *ClientRepo) Update(ctx context.Context, c *model.Client, userID string) error {
	if err := r.checkOwner(ctx, c.ID, userID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE "Client" SET name=$1, email=$2, phone=$3, address=$4, description=$5, updated_at=now() WHERE id=$6`,
		c.Name, c.Email, c.Phone, c.Address, c.Description, c.ID)
	return err
}

// Delete removes a client owned by userID.
func (r *ClientRepo) Delete(ctx context.Context, id, userID string) error {
	if err := r.checkOwner(ctx, id, userID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM "Client" WHERE id = $1`, id)
	return err
}

func (r *ClientRepo) checkOwner(ctx context.Context, id, userID string) error {
	var owner string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM "Client" WHERE id = $1`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrClientNotFound
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrForbidden
	}
	return nil
}
