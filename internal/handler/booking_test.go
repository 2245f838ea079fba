package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lensbook/booking-api/internal/logger"
	"github.com/lensbook/booking-api/internal/middleware"
	"github.com/lensbook/booking-api/internal/model"
	"github.com/lensbook/booking-api/internal/repository"
	"github.com/lensbook/booking-api/internal/validation"
)

const selectOwnedBookingSQL = "SELECT id, user_id, type, date, time, duration_min, location, notes, status, created_at, updated_at FROM bookings WHERE id=? AND user_id=? LIMIT 1"

var bookingCols = []string{
	"id", "user_id", "type", "date", "time", "duration_min",
	"location", "notes", "status", "created_at", "updated_at",
}

func newBookingHandler(t *testing.T) (*BookingHandler, sqlmock.Sqlmock, *echo.Echo) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	e := echo.New()
	e.Validator = validation.New()
	return NewBookingHandler(repository.NewBookingRepo(db), nil, logger.Nop()), mock, e
}

// asUser builds an authenticated request context the way JWTAuth would.
func asUser(e *echo.Echo, method, path, body string, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetIdentity(c, model.Identity{ID: userID, Name: "Jane", Email: "jane@example.com"})
	return c, rec
}

const validBookingJSON = `{"type":"portrait","date":"2026-10-01","time":"14:30","duration":120,"location":"Studio A"}`

func TestCreateBooking_ForcesPendingAndOwner(t *testing.T) {
	h, mock, e := newBookingHandler(t)
	now := time.Now()

	// Client tries to spoof status and user_id; the insert must carry the
	// resolved identity and pending status regardless.
	body := `{"type":"portrait","date":"2026-10-01","time":"14:30","duration":120,"location":"Studio A","status":"confirmed","user_id":999}`

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WithArgs(uint64(42), "portrait", "2026-10-01", "14:30", 120, "Studio A", nil, "pending").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectOwnedBookingSQL)).
		WithArgs(uint64(9), uint64(42)).
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(9, 42, "portrait", "2026-10-01", "14:30", 120, "Studio A", nil, "pending", now, now))

	c, rec := asUser(e, http.MethodPost, "/api/bookings", body, 42)
	require.NoError(t, h.Create(c))

	require.Equal(t, http.StatusCreated, rec.Code)
	out := decodeEnvelope(t, rec)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, float64(42), data["user_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBooking_DurationOutOfRange(t *testing.T) {
	h, _, e := newBookingHandler(t)

	body := `{"type":"portrait","date":"2026-10-01","time":"14:30","duration":29,"location":"Studio A"}`
	c, rec := asUser(e, http.MethodPost, "/api/bookings", body, 42)
	require.NoError(t, h.Create(c))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	out := decodeEnvelope(t, rec)
	details := out["details"].([]interface{})
	first := details[0].(map[string]interface{})
	assert.Equal(t, "duration", first["field"])
}

func TestUpdateBooking_NotOwnedReadsAsNotFound(t *testing.T) {
	h, mock, e := newBookingHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectOwnedBookingSQL)).
		WithArgs(uint64(9), uint64(1000)).
		WillReturnError(sql.ErrNoRows)

	c, rec := asUser(e, http.MethodPut, "/api/bookings/9", validBookingJSON, 1000)
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "forbidden")
}

func TestUpdateBooking_RejectsInvalidTransition(t *testing.T) {
	h, mock, e := newBookingHandler(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(selectOwnedBookingSQL)).
		WithArgs(uint64(9), uint64(42)).
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(9, 42, "portrait", "2026-10-01", "14:30", 120, "Studio A", nil, "completed", now, now))

	body := `{"type":"portrait","date":"2026-10-01","time":"14:30","duration":120,"location":"Studio A","status":"pending"}`
	c, rec := asUser(e, http.MethodPut, "/api/bookings/9", body, 42)
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.Update(c))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid status transition")
}

func TestUpdateBooking_ConfirmPending(t *testing.T) {
	h, mock, e := newBookingHandler(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(selectOwnedBookingSQL)).
		WithArgs(uint64(9), uint64(42)).
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(9, 42, "portrait", "2026-10-01", "14:30", 120, "Studio A", nil, "pending", now, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET")).
		WithArgs("portrait", "2026-10-01", "14:30", 120, "Studio A", nil, "confirmed", uint64(9), uint64(42), "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectOwnedBookingSQL)).
		WithArgs(uint64(9), uint64(42)).
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(9, 42, "portrait", "2026-10-01", "14:30", 120, "Studio A", nil, "confirmed", now, now))

	body := `{"type":"portrait","date":"2026-10-01","time":"14:30","duration":120,"location":"Studio A","status":"confirmed"}`
	c, rec := asUser(e, http.MethodPut, "/api/bookings/9", body, 42)
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.Update(c))

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeEnvelope(t, rec)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, "confirmed", data["status"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBooking_NotOwnedReadsAsNotFound(t *testing.T) {
	h, mock, e := newBookingHandler(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE id=? AND user_id=?")).
		WithArgs(uint64(9), uint64(1000)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	c, rec := asUser(e, http.MethodDelete, "/api/bookings/9", "", 1000)
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListBookings_EmptyIsAnArray(t *testing.T) {
	h, mock, e := newBookingHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, type, date, time, duration_min, location, notes, status, created_at, updated_at FROM bookings WHERE user_id=?")).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows(bookingCols))

	c, rec := asUser(e, http.MethodGet, "/api/bookings", "", 42)
	require.NoError(t, h.List(c))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}
