package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/integration-system/backend/internal/domain"
)

const employeeColumns = `id, full_name, date_of_birth, gender, phone_number, email, hire_date, department_id, position_id, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*domain.Employee, error) {
	e := &domain.Employee{}
	dst := []any{&e.ID, &e.FullName, &e.DateOfBirth, &e.Gender, &e.PhoneNumber, &e.Email, &e.HireDate, &e.DepartmentID, &e.PositionID, &e.Status, &e.CreatedAt, &e.UpdatedAt}
	if err := row.Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *Repository) GetEmployee(ctx context.Context, id int64) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return scanEmployee(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) ListEmployees(ctx context.Context) ([]*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY id`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]*domain.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

func (r *Repository) FindEmployeeIDByEmail(ctx context.Context, email string) (int64, error) {
	query := `SELECT id FROM employees WHERE LOWER(email) = LOWER($1)`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var id int64
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrEmployeeNotFound
		}
		return 0, err
	}

	return id, nil
}

// BeginEmployeeTx 开启员工写事务，事务在提交或回滚时释放超时资源
func (r *Repository) BeginEmployeeTx(ctx context.Context) (domain.EmployeeTx, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		cancel()
		return nil, err
	}

	return &employeeTx{tx: tx, cancel: cancel}, nil
}

type employeeTx struct {
	tx     *sql.Tx
	cancel context.CancelFunc
}

func (t *employeeTx) InsertEmployee(ctx context.Context, e *domain.Employee) error {
	query := `
		INSERT INTO employees (full_name, date_of_birth, gender, phone_number, email, hire_date, department_id, position_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	args := []any{e.FullName, e.DateOfBirth, e.Gender, e.PhoneNumber, e.Email, e.HireDate, e.DepartmentID, e.PositionID, e.Status}
	if err := t.tx.QueryRowContext(ctx, query, args...).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return translateEmployeeError(err)
	}

	return nil
}

func (t *employeeTx) GetEmployeeForUpdate(ctx context.Context, id int64) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1 FOR UPDATE`

	return scanEmployee(t.tx.QueryRowContext(ctx, query, id))
}

func (t *employeeTx) UpdateEmployee(ctx context.Context, e *domain.Employee) (int64, error) {
	query := `
		UPDATE employees
		SET
			full_name = $1,
			date_of_birth = $2,
			gender = $3,
			phone_number = $4,
			email = $5,
			hire_date = $6,
			department_id = $7,
			position_id = $8,
			status = $9,
			updated_at = NOW()
		WHERE id = $10
	`

	args := []any{e.FullName, e.DateOfBirth, e.Gender, e.PhoneNumber, e.Email, e.HireDate, e.DepartmentID, e.PositionID, e.Status, e.ID}
	result, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, translateEmployeeError(err)
	}

	return result.RowsAffected()
}

func (t *employeeTx) DeleteEmployee(ctx context.Context, id int64) (int64, error) {
	query := `DELETE FROM employees WHERE id = $1`

	result, err := t.tx.ExecContext(ctx, query, id)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (t *employeeTx) Commit() error {
	defer t.cancel()
	return t.tx.Commit()
}

func (t *employeeTx) Rollback() error {
	defer t.cancel()
	return t.tx.Rollback()
}
