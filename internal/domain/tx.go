package domain

import "context"

// EmployeeTx 是主库上的员工写事务，提交之前的所有写入都可以回滚
type EmployeeTx interface {
	InsertEmployee(ctx context.Context, e *Employee) error
	GetEmployeeForUpdate(ctx context.Context, id int64) (*Employee, error)
	UpdateEmployee(ctx context.Context, e *Employee) (int64, error)
	DeleteEmployee(ctx context.Context, id int64) (int64, error)
	Commit() error
	Rollback() error
}
