package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lensbook/booking-api/internal/model"
	"github.com/lensbook/booking-api/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, name, email, password_hash, phone, created_at, updated_at"

// Create hashes the password and inserts the user, returning its ID.
// Email is normalized (lowercased, trimmed) before the write; a duplicate
// maps to ErrEmailExists via the MySQL 1062 error code.
func (r *UserRepo) Create(ctx context.Context, name, email, password, phone string, cost int) (uint64, error) {
	email = NormalizeEmail(email)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, phone) VALUES (?,?,?,?)",
		name, email, hash, nullable(phone))
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", NormalizeEmail(email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// List returns all users, newest first. Password hashes are included in
// the model; handlers are responsible for sanitizing responses.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateProfile changes name, email and phone. The password hash is never
// touched here, so unrelated profile edits cannot re-hash or clear it.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, name, email, phone string) (model.User, error) {
	email = NormalizeEmail(email)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, email=?, phone=? WHERE id=?",
		name, email, nullable(phone), id)
	if err != nil {
		if isDuplicateKey(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// UpdatePassword re-hashes and stores a new password for the user.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, newPassword string, cost int) error {
	hash, err := utils.HashPassword(newPassword, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE id=?", hash, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user and all their bookings in one transaction.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM bookings WHERE user_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// NormalizeEmail canonicalizes an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg interface{}) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(s rowScanner) (model.User, error) {
	var u model.User
	var phone sql.NullString
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &phone, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Phone = phone.String
	return u, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// MySQL reports unique index violations as error 1062.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
