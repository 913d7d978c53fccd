package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ritualplanner/ritualplanner/internal/model"
)

// UserRepo persists "User" and "Auth" rows. The two are created atomically at
// registration and removed atomically at account deletion.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Register inserts the User and its Auth row in a single transaction. The
// user id is generated when absent and assigned back to u. OAuth-originated
// accounts pass an empty passwordHash and get no Auth row.
func (r *UserRepo) Register(ctx context.Context, u *model.User, username, passwordHash string) error {
	u.ID = ensureID(u.ID)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO "User" (id, name, email, phone, city, state, zipcode) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.Name, u.Email, u.Phone, u.City, u.State, u.Zipcode)
	if err != nil {
		// 23505 = unique_violation; the only unique column is email
		if strings.Contains(err.Error(), "23505") {
			return ErrEmailExists
		}
		return err
	}
	if passwordHash != "" {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO "Auth" (id, user_id, username, password_hash) VALUES ($1,$2,$3,$4)`,
			ensureID(""), u.ID, username, passwordHash)
		if err != nil {
			return err
		}
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM "User" WHERE id = $1`, u.ID).
		Scan(&u.CreatedAt.Time, &u.UpdatedAt.Time); err != nil {
		return err
	}
	return tx.Commit()
}

const userCols = `id, name, email, phone, city, state, zipcode, created_at, updated_at`

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.City, &u.State, &u.Zipcode,
		&u.CreatedAt.Time, &u.UpdatedAt.Time)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM "User" WHERE email = $1`, email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM "User" WHERE id = $1`, id))
}

// Credentials returns the user id and stored password hash for an email.
// Users without an Auth row (external identity provider sign-ups) are
// reported as not found, which callers surface as invalid credentials.
func (r *UserRepo) Credentials(ctx context.Context, email string) (userID, passwordHash string, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	err = r.DB.QueryRowContext(ctx,
		`SELECT u.id, a.password_hash FROM "User" u JOIN "Auth" a ON a.user_id = u.id WHERE u.email = $1`,
		email).Scan(&userID, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrUserNotFound
	}
	return userID, passwordHash, err
}

// UpdatePassword replaces the stored hash for the user with the given email.
func (r *UserRepo) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		`UPDATE "Auth" a SET password_hash = $1, updated_at = now()
		 FROM "User" u WHERE a.user_id = u.id AND u.email = $2`,
		passwordHash, email)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateProfile updates the mutable profile fields of a user.
func (r *UserRepo) UpdateProfile(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE "User" SET name=$1, phone=$2, city=$3, state=$4, zipcode=$5, updated_at=now() WHERE id=$6`,
		u.Name, u.Phone, u.City, u.State, u.Zipcode, u.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteAccount removes the user's refresh tokens, Auth row and User row in
// that order inside one transaction. A missing Auth row is tolerated so that
// accounts created through an external identity provider can be deleted too.
func (r *UserRepo) DeleteAccount(ctx context.Context, userID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM "RefreshToken" WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM "Auth" WHERE user_id = $1`, userID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM "User" WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return tx.Commit()
}
