package repository

import (
	"errors"

	"github.com/integration-system/backend/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translateEmployeeError 把员工表上的约束冲突转换为领域错误
func translateEmployeeError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.ConstraintName {
	case "employees_email_key":
		return domain.ErrEmailAlreadyExists
	case "employees_department_id_fkey":
		return domain.ErrInvalidDepartment
	case "employees_position_id_fkey":
		return domain.ErrInvalidPosition
	default:
		return err
	}
}

// translateIdentityError 把身份表上的约束冲突转换为带错误码的 IdentityError
func translateIdentityError(op string, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		switch pgErr.ConstraintName {
		case "identity_users_pkey":
			return domain.NewIdentityError(op, domain.IdentityCodeDuplicateID, pgErr.Detail)
		case "identity_users_username_key":
			return domain.NewIdentityError(op, domain.IdentityCodeDuplicateUserName, pgErr.Detail)
		case "identity_users_email_key":
			return domain.NewIdentityError(op, domain.IdentityCodeDuplicateEmail, pgErr.Detail)
		}
	case pgForeignKeyViolation:
		switch pgErr.ConstraintName {
		case "identity_user_roles_role_fkey":
			return domain.NewIdentityError(op, domain.IdentityCodeRoleNotFound, pgErr.Detail)
		case "identity_user_roles_user_id_fkey":
			return domain.NewIdentityError(op, domain.IdentityCodeUserNotFound, pgErr.Detail)
		}
	}

	return err
}
