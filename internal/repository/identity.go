package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/integration-system/backend/internal/domain"
)

// 以下方法实现身份系统的存储，身份表与员工表位于同一个主库

func (r *Repository) CreatePrincipal(ctx context.Context, p *domain.Principal) error {
	query := `
		INSERT INTO identity_users (id, username, email, password_hash, security_stamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{p.ID, p.Username, p.Email, p.PasswordHash, p.SecurityStamp}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&p.CreatedAt); err != nil {
		return translateIdentityError("create", err)
	}

	return nil
}

func (r *Repository) findPrincipal(ctx context.Context, where string, arg any) (*domain.Principal, error) {
	query := `SELECT id, username, email, password_hash, security_stamp, created_at FROM identity_users WHERE ` + where

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	p := &domain.Principal{}
	dst := []any{&p.ID, &p.Username, &p.Email, &p.PasswordHash, &p.SecurityStamp, &p.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, arg).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, err
	}

	rows, err := r.dbpool.QueryContext(ctx, `SELECT role FROM identity_user_roles WHERE user_id = $1 ORDER BY role`, p.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		p.Roles = append(p.Roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return p, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Principal, error) {
	return r.findPrincipal(ctx, `id = $1`, id)
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	return r.findPrincipal(ctx, `LOWER(email) = LOWER($1)`, email)
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (*domain.Principal, error) {
	return r.findPrincipal(ctx, `username = $1`, username)
}

func (r *Repository) UpdatePrincipal(ctx context.Context, p *domain.Principal) error {
	query := `
		UPDATE identity_users
		SET username = $1, email = $2, password_hash = $3, security_stamp = $4
		WHERE id = $5
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{p.Username, p.Email, p.PasswordHash, p.SecurityStamp, p.ID}
	result, err := r.dbpool.ExecContext(ctx, query, args...)
	if err != nil {
		return translateIdentityError("update", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewIdentityError("update", domain.IdentityCodeUserNotFound, p.ID)
	}

	return nil
}

func (r *Repository) DeletePrincipal(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, `DELETE FROM identity_users WHERE id = $1`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewIdentityError("delete", domain.IdentityCodeUserNotFound, id)
	}

	return nil
}

func (r *Repository) RoleExists(ctx context.Context, role domain.Role) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM identity_roles WHERE name = $1)`, role)
}

func (r *Repository) CreateRole(ctx context.Context, role domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, `INSERT INTO identity_roles (name) VALUES ($1) ON CONFLICT DO NOTHING`, role)
	return err
}

// SetRoles 在同一事务中替换身份的全部角色
func (r *Repository) SetRoles(ctx context.Context, id string, roles []domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM identity_user_roles WHERE user_id = $1`, id); err != nil {
		return err
	}

	for _, role := range roles {
		if _, err := tx.ExecContext(ctx, `INSERT INTO identity_user_roles (user_id, role) VALUES ($1, $2)`, id, role); err != nil {
			return translateIdentityError("set roles", err)
		}
	}

	return tx.Commit()
}

func (r *Repository) HasAnyWithRole(ctx context.Context, role domain.Role) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM identity_user_roles WHERE role = $1)`, role)
}
