package domain

import "errors"

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrPrincipalNotFound  = errors.New("identity principal not found")
	ErrUsernameExhausted  = errors.New("no unique username available")
	ErrNoRowsAffected     = errors.New("no rows affected")
	ErrInvalidDepartment  = errors.New("department does not exist")
	ErrInvalidPosition    = errors.New("position does not exist")

	ErrSalaryExists       = errors.New("salary record already exists for this period")
	ErrSalaryNotFound     = errors.New("salary record not found")
	ErrAttendanceNotFound = errors.New("attendance record not found")
)
