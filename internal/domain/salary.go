package domain

import "time"

type SalaryRecord struct {
	ID          int64     `json:"id"`
	EmployeeID  int64     `json:"employeeID"`
	SalaryMonth time.Time `json:"salaryMonth"`
	BaseSalary  float64   `json:"baseSalary"`
	Bonus       float64   `json:"bonus"`
	Deductions  float64   `json:"deductions"`
	NetSalary   float64   `json:"netSalary"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SalaryInput 是录入工资时调用方提交的数据，Deductions 会被服务端按缺勤公式覆盖
type SalaryInput struct {
	EmployeeID  int64
	SalaryMonth time.Time
	BaseSalary  float64
	Bonus       *float64
	Deductions  *float64
}

func (in SalaryInput) BonusOrZero() float64 {
	if in.Bonus == nil {
		return 0
	}
	return *in.Bonus
}

type AttendanceRecord struct {
	ID              int64     `json:"id"`
	EmployeeID      int64     `json:"employeeID"`
	WorkDays        int       `json:"workDays"`
	AbsentDays      int       `json:"absentDays"`
	LeaveDays       int       `json:"leaveDays"`
	AttendanceMonth time.Time `json:"attendanceMonth"`
	CreatedAt       time.Time `json:"createdAt"`
}

// MonthStart 将任意时间归一化为所在月份第一天的 UTC 零点
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
