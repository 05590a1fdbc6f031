package mirror

import (
	"time"

	"github.com/integration-system/backend/internal/domain"
)

type Employee struct {
	ID           int64  `gorm:"primaryKey;autoIncrement:false"`
	FullName     string `gorm:"size:100;not null"`
	DepartmentID *int64 `gorm:"index"`
	PositionID   *int64
	Status       string `gorm:"size:50"`
}

func (Employee) TableName() string {
	return "mirror_employees"
}

func (e *Employee) Record() *domain.MirrorEmployee {
	return &domain.MirrorEmployee{
		ID:           e.ID,
		FullName:     e.FullName,
		DepartmentID: e.DepartmentID,
		PositionID:   e.PositionID,
		Status:       e.Status,
	}
}

// 同一员工同一年月只能有一条工资记录，由唯一索引兜底应用层的存在性检查
type Salary struct {
	ID          int64     `gorm:"primaryKey"`
	EmployeeID  int64     `gorm:"not null;uniqueIndex:idx_salary_employee_period,priority:1"`
	PeriodYear  int       `gorm:"not null;uniqueIndex:idx_salary_employee_period,priority:2"`
	PeriodMonth int       `gorm:"not null;uniqueIndex:idx_salary_employee_period,priority:3"`
	SalaryMonth time.Time `gorm:"not null"`
	BaseSalary  float64   `gorm:"not null"`
	Bonus       float64   `gorm:"not null;default:0"`
	Deductions  float64   `gorm:"not null;default:0"`
	NetSalary   float64   `gorm:"not null"`
	CreatedAt   time.Time `gorm:"index"`
}

func NewSalary(r *domain.SalaryRecord) *Salary {
	month := domain.MonthStart(r.SalaryMonth)
	return &Salary{
		ID:          r.ID,
		EmployeeID:  r.EmployeeID,
		PeriodYear:  month.Year(),
		PeriodMonth: int(month.Month()),
		SalaryMonth: month,
		BaseSalary:  r.BaseSalary,
		Bonus:       r.Bonus,
		Deductions:  r.Deductions,
		NetSalary:   r.NetSalary,
	}
}

func (s *Salary) Record() *domain.SalaryRecord {
	return &domain.SalaryRecord{
		ID:          s.ID,
		EmployeeID:  s.EmployeeID,
		SalaryMonth: time.Date(s.PeriodYear, time.Month(s.PeriodMonth), 1, 0, 0, 0, 0, time.UTC),
		BaseSalary:  s.BaseSalary,
		Bonus:       s.Bonus,
		Deductions:  s.Deductions,
		NetSalary:   s.NetSalary,
		CreatedAt:   s.CreatedAt,
	}
}

type Attendance struct {
	ID              int64     `gorm:"primaryKey"`
	EmployeeID      int64     `gorm:"not null;uniqueIndex:idx_attendance_employee_period,priority:1"`
	PeriodYear      int       `gorm:"not null;uniqueIndex:idx_attendance_employee_period,priority:2"`
	PeriodMonth     int       `gorm:"not null;uniqueIndex:idx_attendance_employee_period,priority:3"`
	AttendanceMonth time.Time `gorm:"not null"`
	WorkDays        int       `gorm:"not null;default:0"`
	AbsentDays      int       `gorm:"not null;default:0"`
	LeaveDays       int       `gorm:"not null;default:0"`
	CreatedAt       time.Time
}

func (Attendance) TableName() string {
	return "attendance"
}

func NewAttendance(r *domain.AttendanceRecord) *Attendance {
	month := domain.MonthStart(r.AttendanceMonth)
	return &Attendance{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		PeriodYear:      month.Year(),
		PeriodMonth:     int(month.Month()),
		AttendanceMonth: month,
		WorkDays:        r.WorkDays,
		AbsentDays:      r.AbsentDays,
		LeaveDays:       r.LeaveDays,
	}
}

func (a *Attendance) Record() *domain.AttendanceRecord {
	return &domain.AttendanceRecord{
		ID:              a.ID,
		EmployeeID:      a.EmployeeID,
		WorkDays:        a.WorkDays,
		AbsentDays:      a.AbsentDays,
		LeaveDays:       a.LeaveDays,
		AttendanceMonth: time.Date(a.PeriodYear, time.Month(a.PeriodMonth), 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:       a.CreatedAt,
	}
}
