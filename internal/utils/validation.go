package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/integration-system/backend/internal/domain"
)

// MaxMonthDays 是一个月内考勤天数之和的上限
const MaxMonthDays = 31

func ValidateEmployeeDates(dateOfBirth, hireDate, now time.Time) error {
	if dateOfBirth.After(now) {
		return errors.New("出生日期不能晚于当前时间")
	}

	if !hireDate.After(dateOfBirth) {
		return errors.New("入职日期必须晚于出生日期")
	}

	return nil
}

func ValidateAttendanceDays(record *domain.AttendanceRecord) error {
	if record.WorkDays < 0 || record.AbsentDays < 0 || record.LeaveDays < 0 {
		return errors.New("考勤天数不能为负数")
	}

	total := record.WorkDays + record.AbsentDays + record.LeaveDays
	if total > MaxMonthDays {
		return fmt.Errorf("考勤天数总和 %d 超过了 %d 天", total, MaxMonthDays)
	}

	days := time.Date(record.AttendanceMonth.Year(), record.AttendanceMonth.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if total > days {
		return fmt.Errorf("考勤天数总和 %d 超过了 %s 的天数 %d", total, record.AttendanceMonth.Format("2006-01"), days)
	}

	return nil
}
