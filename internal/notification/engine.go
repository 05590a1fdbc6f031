package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/integration-system/backend/internal/config"
	"github.com/integration-system/backend/internal/domain"
	"github.com/integration-system/backend/internal/payroll"
)

type SalaryHistory interface {
	Latest(ctx context.Context, employeeID int64) (*domain.SalaryRecord, error)
}

type AbsenceCounter interface {
	AbsentDays(ctx context.Context, employeeID int64, month time.Time) (int, error)
}

type EmployeeLister interface {
	List(ctx context.Context) ([]*domain.Employee, error)
}

const anniversaryDays = 365

// Engine 判断业务触发条件，条件成立时追加一条通知
type Engine struct {
	cfg       *config.Config
	salaries  SalaryHistory
	absences  AbsenceCounter
	employees EmployeeLister
	log       Log
	now       func() time.Time
}

func NewEngine(cfg *config.Config, salaries SalaryHistory, absences AbsenceCounter, employees EmployeeLister, log Log) *Engine {
	return &Engine{
		cfg:       cfg,
		salaries:  salaries,
		absences:  absences,
		employees: employees,
		log:       log,
		now:       time.Now,
	}
}

func (e *Engine) raise(ctx context.Context, employeeID int64, message string) error {
	entry := domain.NotificationEntry{
		EmployeeID: employeeID,
		Message:    message,
		CreatedAt:  e.now().UTC(),
	}
	if err := e.log.Append(ctx, entry); err != nil {
		return err
	}

	slog.Info("已记录通知", "employee_id", employeeID, "message", message)
	return nil
}

// CheckSalaryDeviation 比较拟录入工资的实发金额与该员工最近一条工资记录。
// 没有历史记录时返回 false，调用方可以据此判断是否为首次录入
func (e *Engine) CheckSalaryDeviation(ctx context.Context, in domain.SalaryInput) (bool, error) {
	latest, err := e.salaries.Latest(ctx, in.EmployeeID)
	if err != nil {
		if errors.Is(err, domain.ErrSalaryNotFound) {
			slog.Warn("员工没有历史工资记录", "employee_id", in.EmployeeID)
			return false, nil
		}
		return false, err
	}

	absentDays, err := e.absences.AbsentDays(ctx, in.EmployeeID, in.SalaryMonth)
	if err != nil {
		return false, err
	}

	deductions := payroll.ComputeDeductions(in.BaseSalary, absentDays)
	proposed := payroll.NetSalary(in.BaseSalary, in.BonusOrZero(), deductions)

	gap := math.Abs(proposed - latest.NetSalary)
	if gap <= e.cfg.Notification.SalaryDeviationThreshold {
		return false, nil
	}

	message := fmt.Sprintf("Net salary for employee %d has an unusual gap: %.2f compared to the latest record (%.2f)",
		in.EmployeeID, proposed, latest.NetSalary)
	if err := e.raise(ctx, in.EmployeeID, message); err != nil {
		return false, err
	}
	return true, nil
}

// CheckAnniversaries 为入职满一年（整天数恰好为 365）的员工记录通知，返回通知条数。
// 同一天内重复调用会重复记录
func (e *Engine) CheckAnniversaries(ctx context.Context) (int, error) {
	employees, err := e.employees.List(ctx)
	if err != nil {
		return 0, err
	}

	now := e.now()
	raised := 0
	for _, employee := range employees {
		if employee.HireDate.IsZero() {
			continue
		}

		days := int(now.Sub(employee.HireDate).Hours() / 24)
		if days != anniversaryDays {
			continue
		}

		message := fmt.Sprintf("Employee %d (%s) has completed one year of service", employee.ID, employee.FullName)
		if err := e.raise(ctx, employee.ID, message); err != nil {
			return raised, err
		}
		raised++
	}

	return raised, nil
}

// CheckAbsence 在员工当月缺勤天数超过阈值时记录通知
func (e *Engine) CheckAbsence(ctx context.Context, employeeID int64, month time.Time) (bool, error) {
	absentDays, err := e.absences.AbsentDays(ctx, employeeID, month)
	if err != nil {
		return false, err
	}

	if absentDays <= e.cfg.Notification.AbsenceThreshold {
		return false, nil
	}

	message := fmt.Sprintf("Employee %d was absent %d days in %s", employeeID, absentDays, domain.MonthStart(month).Format("2006-01"))
	if err := e.raise(ctx, employeeID, message); err != nil {
		return false, err
	}
	return true, nil
}

// NotifyDeletion 在员工删除成功后记录通知
func (e *Engine) NotifyDeletion(ctx context.Context, employeeID int64, deleted bool) (bool, error) {
	if !deleted {
		return false, nil
	}

	if err := e.raise(ctx, employeeID, fmt.Sprintf("Employee %d has been deleted", employeeID)); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) All(ctx context.Context) ([]domain.NotificationEntry, error) {
	return e.log.All(ctx)
}
