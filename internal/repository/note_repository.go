package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ritualplanner/ritualplanner/internal/model"
)

// NoteRepo manages persistence for notes. Notes attach to tasks via the
// "TaskNote" join table owned by the task aggregate.
type NoteRepo struct{ db *sql.DB }

func NewNoteRepo(db *sql.DB) *NoteRepo { return &NoteRepo{db: db} }

const noteCols = `id, user_id, title, description, reminder_date, created_at, updated_at`

func scanNote(scan func(dest ...any) error) (model.Note, error) {
	var n model.Note
	var reminder sql.NullTime
	err := scan(&n.ID, &n.UserID, &n.Title, &n.Description, &reminder,
		&n.CreatedAt.Time, &n.UpdatedAt.Time)
	n.ReminderDate = fromNullTime(reminder)
	return n, err
}

// Create inserts a note row and backfills id and timestamps.
func (r *NoteRepo) Create(ctx context.Context, n *model.Note) error {
	n.ID = ensureID(n.ID)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO "Note" (id, user_id, title, description, reminder_date) VALUES ($1,$2,$3,$4,$5)`,
		n.ID, n.UserID, n.Title, n.Description, nullTime(n.ReminderDate))
	if err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM "Note" WHERE id = $1`, n.ID).
		Scan(&n.CreatedAt.Time, &n.UpdatedAt.Time)
}

// GetByID fetches a note owned by userID.
func (r *NoteRepo) GetByID(ctx context.Context, id, userID string) (*model.Note, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+noteCols+` FROM "Note" WHERE id = $1`, id)
	n, err := scanNote(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, ErrForbidden
	}
	return &n, nil
}

// List returns the owner's notes matching the query filters. The date range
// filter applies to the reminder date.
func (r *NoteRepo) List(ctx context.Context, userID string, q ListQuery) ([]model.Note, error) {
	q.Normalize()
	cond, args := q.where(userID, []string{"title", "description"}, "", "reminder_date")
	cond, args = q.page(cond, args)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+noteCols+` FROM "Note" WHERE `+cond, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Note{}
	for rows.Next() {
		n, err := scanNote(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Update rewrites the mutable fields of a note owned by userID.
func (r *NoteRepo) Update(ctx context.Context, n *model.Note, userID string) error {
	if err := r.checkOwner(ctx, n.ID, userID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE "Note" SET title=$1, description=$2, reminder_date=$3, updated_at=now() WHERE id=$4`,
		n.Title, n.Description, nullTime(n.ReminderDate), n.ID)
	return err
}

// Delete removes a note owned by userID. Notes still linked to a task cannot
// be deleted; the task update must drop the link first.
func (r *NoteRepo) Delete(ctx context.Context, id, userID string) error {
	if err := r.checkOwner(ctx, id, userID); err != nil {
		return err
	}
	var linked int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM "TaskNote" WHERE note_id = $1`, id).Scan(&linked); err != nil {
		return err
	}
	if linked > 0 {
		return ErrConflict
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM "Note" WHERE id = $1`, id)
	return err
}

func (r *NoteRepo) checkOwner(ctx context.Context, id, userID string) error {
	var owner string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM "Note" WHERE id = $1`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoteNotFound
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrForbidden
	}
	return nil
}
