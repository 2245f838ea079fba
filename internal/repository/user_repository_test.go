package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lensbook/booking-api/internal/utils"
)

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var userColumnList = []string{"id", "name", "email", "password_hash", "phone", "created_at", "updated_at"}

const selectUserByEmailSQL = "SELECT id, name, email, password_hash, phone, created_at, updated_at FROM users WHERE email=? LIMIT 1"

func TestUserRepo_Create_NormalizesEmailAndHashes(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (name, email, password_hash, phone) VALUES (?,?,?,?)")).
		WithArgs("Jane", "jane@example.com", hashOf("hunter22"), "5551234567").
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := repo.Create(context.Background(), "Jane", "  Jane@Example.COM ", "hunter22", "5551234567", bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create_DuplicateEmail(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'jane@example.com' for key 'users.email'"))

	_, err := repo.Create(context.Background(), "Jane", "jane@example.com", "hunter22", "", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserRepo_GetByEmail_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectUserByEmailSQL)).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepo_GetByEmail_NormalizesLookup(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewUserRepo(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(selectUserByEmailSQL)).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userColumnList).
			AddRow(7, "Jane", "jane@example.com", "$2a$10$hash", nil, now, now))

	u, err := repo.GetByEmail(context.Background(), " Jane@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), u.ID)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Empty(t, u.Phone) // NULL phone scans to empty string
}

func TestUserRepo_Delete_CascadesBookings(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE user_id=?")).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id=?")).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Delete_MissingUserRollsBack(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE user_id=?")).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id=?")).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// hashOf matches any bcrypt hash verifying the given plaintext.
func hashOf(plain string) sqlmock.Argument { return bcryptArg{plain: plain} }

type bcryptArg struct{ plain string }

func (a bcryptArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	return s != a.plain && utils.VerifyPassword(s, a.plain)
}
