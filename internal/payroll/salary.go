package payroll

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/integration-system/backend/internal/config"
	"github.com/integration-system/backend/internal/domain"
	"github.com/integration-system/backend/internal/mirror"
	"gorm.io/gorm"
)

type SalaryStore struct {
	cfg      *config.Config
	db       *gorm.DB
	absences AbsenceCounter
}

func NewSalaryStore(cfg *config.Config, db *gorm.DB, absences AbsenceCounter) *SalaryStore {
	return &SalaryStore{
		cfg:      cfg,
		db:       db,
		absences: absences,
	}
}

// Compute 按缺勤公式计算一条工资记录，调用方传入的扣款会被忽略
func (s *SalaryStore) Compute(ctx context.Context, in domain.SalaryInput) (*domain.SalaryRecord, error) {
	absentDays, err := s.absences.AbsentDays(ctx, in.EmployeeID, in.SalaryMonth)
	if err != nil {
		return nil, err
	}

	bonus := in.BonusOrZero()
	deductions := ComputeDeductions(in.BaseSalary, absentDays)
	if in.Deductions != nil && *in.Deductions != deductions {
		slog.Debug("忽略调用方提交的扣款", "employee_id", in.EmployeeID, "submitted", *in.Deductions, "computed", deductions)
	}

	return &domain.SalaryRecord{
		EmployeeID:  in.EmployeeID,
		SalaryMonth: domain.MonthStart(in.SalaryMonth),
		BaseSalary:  Round(in.BaseSalary),
		Bonus:       Round(bonus),
		Deductions:  deductions,
		NetSalary:   NetSalary(in.BaseSalary, bonus, deductions),
	}, nil
}

func (s *SalaryStore) Insert(ctx context.Context, in domain.SalaryInput) (*domain.SalaryRecord, error) {
	record, err := s.Compute(ctx, in)
	if err != nil {
		return nil, err
	}

	ctx, cancel := mirror.QueryContext(ctx, s.cfg)
	defer cancel()

	row := mirror.NewSalary(record)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrSalaryExists
		}
		return nil, err
	}

	return row.Record(), nil
}

// Exists 判断该员工在该年月是否已有工资记录
func (s *SalaryStore) Exists(ctx context.Context, employeeID int64, month time.Time) (bool, error) {
	ctx, cancel := mirror.QueryContext(ctx, s.cfg)
	defer cancel()

	month = domain.MonthStart(month)

	var count int64
	err := s.db.WithContext(ctx).Model(&mirror.Salary{}).
		Where("employee_id = ? AND period_year = ? AND period_month = ?", employeeID, month.Year(), int(month.Month())).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// History 查询某员工某月的工资。配置为仅按月份匹配时忽略年份，取最近一年的记录
func (s *SalaryStore) History(ctx context.Context, employeeID int64, month time.Time) (*domain.SalaryRecord, error) {
	ctx, cancel := mirror.QueryContext(ctx, s.cfg)
	defer cancel()

	month = domain.MonthStart(month)

	query := s.db.WithContext(ctx).Where("employee_id = ? AND period_month = ?", employeeID, int(month.Month()))
	if !s.cfg.Salary.HistoryMatchMonthOnly {
		query = query.Where("period_year = ?", month.Year())
	}

	row := &mirror.Salary{}
	if err := query.Order("period_year DESC").First(row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSalaryNotFound
		}
		return nil, err
	}

	return row.Record(), nil
}

// Latest 返回该员工最近录入的一条工资记录，作为偏差检查的基准
func (s *SalaryStore) Latest(ctx context.Context, employeeID int64) (*domain.SalaryRecord, error) {
	ctx, cancel := mirror.QueryContext(ctx, s.cfg)
	defer cancel()

	row := &mirror.Salary{}
	err := s.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC, id DESC").
		First(row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSalaryNotFound
		}
		return nil, err
	}

	return row.Record(), nil
}

func (s *SalaryStore) GetByID(ctx context.Context, id int64) (*domain.SalaryRecord, error) {
	ctx, cancel := mirror.QueryContext(ctx, s.cfg)
	defer cancel()

	row := &mirror.Salary{}
	if err := s.db.WithContext(ctx).First(row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSalaryNotFound
		}
		return nil, err
	}

	return row.Record(), nil
}

func (s *SalaryStore) List(ctx context.Context) ([]*domain.SalaryRecord, error) {
	ctx, cancel := mirror.QueryContext(ctx, s.cfg)
	defer cancel()

	var rows []*mirror.Salary
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	return salaryRecords(rows), nil
}

// ListForPeriod 返回某年某月所有员工的工资，用于群发工资条
func (s *SalaryStore) ListForPeriod(ctx context.Context, year int, month time.Month) ([]*domain.SalaryRecord, error) {
	ctx, cancel := mirror.QueryContext(ctx, s.cfg)
	defer cancel()

	var rows []*mirror.Salary
	err := s.db.WithContext(ctx).
		Where("period_year = ? AND period_month = ?", year, int(month)).
		Order("employee_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return salaryRecords(rows), nil
}

func salaryRecords(rows []*mirror.Salary) []*domain.SalaryRecord {
	records := make([]*domain.SalaryRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Record())
	}
	return records
}
