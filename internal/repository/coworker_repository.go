package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ritualplanner/ritualplanner/internal/model"
)

// CoWorkerRepo manages persistence for co-workers, the helpers a task can
// reference as assistants.
type CoWorkerRepo struct{ db *sql.DB }

func NewCoWorkerRepo(db *sql.DB) *CoWorkerRepo { return &CoWorkerRepo{db: db} }

const coWorkerCols = `id, user_id, name, email, phone, address, created_at, updated_at`

// Create inserts a co-worker row and backfills id and timestamps.
func (r *CoWorkerRepo) Create(ctx context.Context, w *model.CoWorker) error {
	w.ID = ensureID(w.ID)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO "CoWorker" (id, user_id, name, email, phone, address) VALUES ($1,$2,$3,$4,$5,$6)`,
		w.ID, w.UserID, w.Name, w.Email, w.Phone, w.Address)
	if err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM "CoWorker" WHERE id = $1`, w.ID).
		Scan(&w.CreatedAt.Time, &w.UpdatedAt.Time)
}

// GetByID fetches a co-worker owned by userID.
func (r *CoWorkerRepo) GetByID(ctx context.Context, id, userID string) (*model.CoWorker, error) {
	var w model.CoWorker
	err := r.db.QueryRowContext(ctx,
		`SELECT `+coWorkerCols+` FROM "CoWorker" WHERE id = $1`, id).
		Scan(&w.ID, &w.UserID, &w.Name, &w.Email, &w.Phone, &w.Address,
			&w.CreatedAt.Time, &w.UpdatedAt.Time)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCoWorkerNotFound
	}
	if err != nil {
		return nil, err
	}
	if w.UserID != userID {
		return nil, ErrForbidden
	}
	return &w, nil
}

// List returns the owner's co-workers matching the query filters.
func (r *CoWorkerRepo) List(ctx context.Context, userID string, q ListQuery) ([]model.CoWorker, error) {
	q.Normalize()
	cond, args := q.where(userID, []string{"name"}, "", "")
	cond, args = q.page(cond, args)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+coWorkerCols+` FROM "CoWorker" WHERE `+cond, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.CoWorker{}
	for rows.Next() {
		var w model.CoWorker
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.Email, &w.Phone, &w.Address,
			&w.CreatedAt.Time, &w.UpdatedAt.Time); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Update rewrites the mutable fields of a co-worker owned by userID.
func (r *CoWorkerRepo) Update(ctx context.Context, w *model.CoWorker, userID string) error {
	if err := r.checkOwner(ctx, w.ID, userID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE "CoWorker" SET name=$1, email=$2, phone=$3, address=$4, updated_at=now() WHERE id=$5`,
		w.Name, w.Email, w.Phone, w.Address, w.ID)
	return err
}

// Delete removes a co-worker owned by userID.
func (r *CoWorkerRepo) Delete(ctx context.Context, id, userID string) error {
	if err := r.checkOwner(ctx, id, userID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM "CoWorker" WHERE id = $1`, id)
	return err
}

func (r *CoWorkerRepo) checkOwner(ctx context.Context, id, userID string) error {
	var owner string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM "CoWorker" WHERE id = $1`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCoWorkerNotFound
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrForbidden
	}
	return nil
}
