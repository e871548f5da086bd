package shift

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/events"
	"github.com/georgemunganga/cafepos/internal/platform/web"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCashUp(t *testing.T) {
	s := &Shift{OpeningCash: d("200"), Notes: "float from safe"}
	cashUp(s, d("345.50"), d("540"), "  ")

	assert.Equal(t, "545.5", s.ExpectedCash.Decimal.String())
	assert.Equal(t, "540", s.ClosingCash.Decimal.String())
	assert.Equal(t, "-5.5", s.CashDifference.Decimal.String())
	assert.True(t, s.CashDifference.Valid)
	assert.Equal(t, "float from safe", s.Notes)

	cashUp(s, decimal.Zero, d("200"), "all good")
	assert.True(t, s.CashDifference.Decimal.IsZero())
	assert.Equal(t, "all good", s.Notes)
}

type memRepo struct {
	shifts map[uuid.UUID]*Shift
}

func (m *memRepo) Open(_ context.Context, s *Shift) error {
	for _, other := range m.shifts {
		if other.UserID == s.UserID && other.IsOpen() {
			return apperr.Conflictf("a shift is already open for this user")
		}
	}
	s.OpenedAt = time.Now()
	m.shifts[s.ID] = s
	return nil
}

func (m *memRepo) Current(_ context.Context, userID uuid.UUID) (*Shift, error) {
	for _, s := range m.shifts {
		if s.UserID == userID && s.IsOpen() {
			return s, nil
		}
	}
	return nil, apperr.NotFoundf("no open shift")
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Shift, error) {
	s, ok := m.shifts[id]
	if !ok {
		return nil, apperr.NotFoundf("shift not found")
	}
	return s, nil
}

func (m *memRepo) List(context.Context, *uuid.UUID, int) ([]*Shift, error) { return nil, nil }

func (m *memRepo) Close(ctx context.Context, userID uuid.UUID, closing decimal.Decimal, notes string) (*Shift, error) {
	s, err := m.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	cashUp(s, decimal.Zero, closing, notes)
	now := time.Now()
	s.ClosedAt = &now
	return s, nil
}

func asUser(role string) (context.Context, uuid.UUID) {
	id := uuid.New()
	return web.WithIdentity(context.Background(), web.Identity{UserID: id, Role: role}), id
}

func TestOpenAndCloseShift(t *testing.T) {
	bus := events.NewBus()
	ch, unsub := bus.Subscribe(4)
	defer unsub()
	svc := NewService(&memRepo{shifts: map[uuid.UUID]*Shift{}}, bus)
	ctx, userID := asUser(web.RoleCashier)

	_, err := svc.Open(context.Background(), OpenRequest{})
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))

	_, err = svc.Open(ctx, OpenRequest{OpeningCash: d("-1")})
	assert.True(t, errors.Is(err, apperr.ErrInvalid))

	sh, err := svc.Open(ctx, OpenRequest{OpeningCash: d("150")})
	require.NoError(t, err)
	assert.Equal(t, userID, sh.UserID)
	ev := <-ch
	assert.Equal(t, events.ShiftUpdate, ev.Type)
	assert.Equal(t, "open", ev.Status)

	_, err = svc.Open(ctx, OpenRequest{OpeningCash: d("10")})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	cur, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, sh.ID, cur.ID)

	closed, err := svc.Close(ctx, CloseRequest{ClosingCash: d("160")})
	require.NoError(t, err)
	assert.False(t, closed.IsOpen())
	assert.Equal(t, "10", closed.CashDifference.Decimal.String())
	ev = <-ch
	assert.Equal(t, "closed", ev.Status)

	_, err = svc.Current(ctx)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestGetShiftOwnership(t *testing.T) {
	repo := &memRepo{shifts: map[uuid.UUID]*Shift{}}
	svc := NewService(repo, events.Discard{})
	owner, _ := asUser(web.RoleCashier)
	sh, err := svc.Open(owner, OpenRequest{})
	require.NoError(t, err)

	other, _ := asUser(web.RoleCashier)
	_, err = svc.Get(other, sh.ID)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	manager, _ := asUser(web.RoleManager)
	got, err := svc.Get(manager, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, sh.ID, got.ID)
}

func TestOpenIDWithoutOpenShift(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM shifts WHERE user_id=$1 AND closed_at IS NULL`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	id, err := OpenID(context.Background(), db, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseComputesExpectedCash(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userID, shiftID := uuid.New(), uuid.New()
	opened := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	closedAt := opened.Add(8 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(shiftID.String()))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM shifts s WHERE s.id=$1`)).
		WithArgs(shiftID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "opened_at", "closed_at", "opening_cash",
			"closing_cash", "expected_cash", "cash_difference", "notes", "order_count", "sales_total"}).
			AddRow(shiftID.String(), userID.String(), opened, nil, "100.00", nil, nil, nil, "", int64(3), "84.00"))
	mock.ExpectQuery(regexp.QuoteMeta(`SUM(amount - change_given)`)).
		WithArgs(shiftID).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("60.00"))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE shifts`)).
		WithArgs("155", "160", "-5", "", shiftID).
		WillReturnRows(sqlmock.NewRows([]string{"closed_at"}).AddRow(closedAt))
	mock.ExpectCommit()

	repo := NewPostgresRepository(db)
	sh, err := repo.Close(context.Background(), userID, d("155"), "")
	require.NoError(t, err)
	assert.Equal(t, 3, sh.OrderCount)
	assert.Equal(t, "-5", sh.CashDifference.Decimal.String())
	require.NotNil(t, sh.ClosedAt)
	assert.True(t, sh.ClosedAt.Equal(closedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}
