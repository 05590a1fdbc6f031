package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/integration-system/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceStore_MissingRowCountsAsZero(t *testing.T) {
	cfg, db := newTestDB(t)
	store := NewAttendanceStore(cfg, db)

	absent, err := store.AbsentDays(context.Background(), 42, month(2024, time.March))
	require.NoError(t, err)
	assert.Equal(t, 0, absent)

	leave, err := store.LeaveDays(context.Background(), 42, month(2024, time.March))
	require.NoError(t, err)
	assert.Equal(t, 0, leave)
}

func TestAttendanceStore_UpsertOverwritesPeriod(t *testing.T) {
	cfg, db := newTestDB(t)
	store := NewAttendanceStore(cfg, db)
	ctx := context.Background()

	first, err := store.Upsert(ctx, &domain.AttendanceRecord{
		EmployeeID:      7,
		WorkDays:        20,
		AbsentDays:      2,
		LeaveDays:       1,
		AttendanceMonth: time.Date(2024, time.March, 17, 9, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, month(2024, time.March), first.AttendanceMonth)

	second, err := store.Upsert(ctx, &domain.AttendanceRecord{
		EmployeeID:      7,
		WorkDays:        18,
		AbsentDays:      4,
		LeaveDays:       0,
		AttendanceMonth: month(2024, time.March),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 4, second.AbsentDays)

	absent, err := store.AbsentDays(ctx, 7, time.Date(2024, time.March, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 4, absent)

	records, err := store.ListByEmployee(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestAttendanceStore_GetByID(t *testing.T) {
	cfg, db := newTestDB(t)
	store := NewAttendanceStore(cfg, db)
	ctx := context.Background()

	_, err := store.GetByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrAttendanceNotFound)

	created, err := store.Upsert(ctx, &domain.AttendanceRecord{EmployeeID: 3, WorkDays: 22, AttendanceMonth: month(2024, time.May)})
	require.NoError(t, err)

	got, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.EmployeeID)
	assert.Equal(t, 22, got.WorkDays)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAttendanceStore_UpdateByID(t *testing.T) {
	cfg, db := newTestDB(t)
	store := NewAttendanceStore(cfg, db)
	ctx := context.Background()

	_, err := store.Update(ctx, &domain.AttendanceRecord{ID: 99, WorkDays: 1})
	assert.ErrorIs(t, err, domain.ErrAttendanceNotFound)

	created, err := store.Upsert(ctx, &domain.AttendanceRecord{EmployeeID: 5, WorkDays: 20, AbsentDays: 2, AttendanceMonth: month(2024, time.June)})
	require.NoError(t, err)

	updated, err := store.Update(ctx, &domain.AttendanceRecord{ID: created.ID, WorkDays: 15, AbsentDays: 0, LeaveDays: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated.EmployeeID)
	assert.Equal(t, month(2024, time.June), updated.AttendanceMonth)
	assert.Equal(t, 15, updated.WorkDays)
	assert.Equal(t, 0, updated.AbsentDays)
	assert.Equal(t, 5, updated.LeaveDays)
}
