package payroll

import "math"

const (
	// DeductionRate 是按基本工资计提的固定扣款比例
	DeductionRate = 0.10
	// AbsencePenalty 是每个缺勤日的扣款
	AbsencePenalty = 200.0
)

// Round 将金额保留两位小数
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

func ComputeDeductions(baseSalary float64, absentDays int) float64 {
	return Round(baseSalary*DeductionRate + AbsencePenalty*float64(absentDays))
}

func NetSalary(baseSalary, bonus, deductions float64) float64 {
	return Round(baseSalary + bonus - deductions)
}
