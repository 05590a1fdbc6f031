package payroll

import (
	"context"
	"errors"
	"time"

	"github.com/integration-system/backend/internal/config"
	"github.com/integration-system/backend/internal/domain"
	"github.com/integration-system/backend/internal/mirror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AbsenceCounter 提供某员工某月的缺勤天数
type AbsenceCounter interface {
	AbsentDays(ctx context.Context, employeeID int64, month time.Time) (int, error)
}

type AttendanceStore struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewAttendanceStore(cfg *config.Config, db *gorm.DB) *AttendanceStore {
	return &AttendanceStore{
		cfg: cfg,
		db:  db,
	}
}

func (s *AttendanceStore) findByPeriod(ctx context.Context, employeeID int64, month time.Time) (*mirror.Attendance, error) {
	month = domain.MonthStart(month)

	row := &mirror.Attendance{}
	err := s.db.WithContext(ctx).
		Where("employee_id = ? AND period_year = ? AND period_month = ?", employeeID, month.Year(), int(month.Month())).
		First(row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAttendanceNotFound
		}
		return nil, err
	}

	return row, nil
}

// AbsentDays 没有考勤记录时视为没有缺勤
func (s *AttendanceStore) AbsentDays(ctx context.Context, employeeID int64, month time.Time) (int, error) {
	ctx, cancel := mirror.QueryContext(ctx, s.cfg)
	defer cancel()

	row, err := s.findByPeriod(ctx, employeeID, month)
	if err != nil {
		if errors.Is(err, domain.ErrAttendanceNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return row.AbsentDays, nil
}

func (s *AttendanceStore) LeaveDays(ctx context.Context, employeeID int64, month time.Time) (int, error) {
	ctx, cancel := mirror.QueryContext(ctx, s.cfg)
	defer cancel()

	row, err := s.findByPeriod(ctx, employeeID, month)
	if err != nil {
		if errors.Is(err, domain.ErrAttendanceNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return row.LeaveDays, nil
}

func (s *AttendanceStore) List(ctx context.Context) ([]*domain.AttendanceRecord, error) {
	ctx, cancel := mirror.QueryContext(ctx, s.cfg)
	defer cancel()

	var rows []*mirror.Attendance
	if err := s.db.WithContext(ctx).Order("period_year DESC, period_month DESC, employee_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	return attendanceRecords(rows), nil
}

func (s *AttendanceStore) GetByID(ctx context.Context, id int64) (*domain.AttendanceRecord, error) {
	ctx, cancel := mirror.QueryContext(ctx, s.cfg)
	defer cancel()

	row := &mirror.Attendance{}
	if err := s.db.WithContext(ctx).First(row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAttendanceNotFound
		}
		return nil, err
	}

	return row.Record(), nil
}

func (s *AttendanceStore) ListByEmployee(ctx context.Context, employeeID int64) ([]*domain.AttendanceRecord, error) {
	ctx, cancel := mirror.QueryContext(ctx, s.cfg)
	defer cancel()

	var rows []*mirror.Attendance
	err := s.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("period_year DESC, period_month DESC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return attendanceRecords(rows), nil
}

// Upsert 按员工和月份写入考勤，已存在时覆盖天数
func (s *AttendanceStore) Upsert(ctx context.Context, record *domain.AttendanceRecord) (*domain.AttendanceRecord, error) {
	ctx, cancel := mirror.QueryContext(ctx, s.cfg)
	defer cancel()

	row := mirror.NewAttendance(record)
	row.ID = 0
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "employee_id"}, {Name: "period_year"}, {Name: "period_month"}},
		DoUpdates: clause.AssignmentColumns([]string{"work_days", "absent_days", "leave_days"}),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}

	stored, err := s.findByPeriod(ctx, record.EmployeeID, record.AttendanceMonth)
	if err != nil {
		return nil, err
	}

	return stored.Record(), nil
}

// Update 按 ID 覆盖考勤天数，员工和月份保持不变
func (s *AttendanceStore) Update(ctx context.Context, record *domain.AttendanceRecord) (*domain.AttendanceRecord, error) {
	ctx, cancel := mirror.QueryContext(ctx, s.cfg)
	defer cancel()

	result := s.db.WithContext(ctx).Model(&mirror.Attendance{}).Where("id = ?", record.ID).Updates(map[string]any{
		"work_days":   record.WorkDays,
		"absent_days": record.AbsentDays,
		"leave_days":  record.LeaveDays,
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrAttendanceNotFound
	}

	row := &mirror.Attendance{}
	if err := s.db.WithContext(ctx).First(row, record.ID).Error; err != nil {
		return nil, err
	}

	return row.Record(), nil
}

func attendanceRecords(rows []*mirror.Attendance) []*domain.AttendanceRecord {
	records := make([]*domain.AttendanceRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Record())
	}
	return records
}
