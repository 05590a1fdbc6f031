package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/integration-system/backend/internal/domain"
)

func (r *Repository) DepartmentExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM departments WHERE id = $1)`, id)
}

func (r *Repository) PositionExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM positions WHERE id = $1)`, id)
}

func (r *Repository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var exists bool
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *Repository) GetAllDepartments(ctx context.Context) ([]*domain.Department, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, `SELECT id, name, created_at FROM departments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	departments := make([]*domain.Department, 0)
	for rows.Next() {
		d := &domain.Department{}
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return departments, nil
}

func (r *Repository) GetAllPositions(ctx context.Context) ([]*domain.Position, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, `SELECT id, name, created_at FROM positions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	positions := make([]*domain.Position, 0)
	for rows.Next() {
		p := &domain.Position{}
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return positions, nil
}

func (r *Repository) GetDepartment(ctx context.Context, id int64) (*domain.Department, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	d := &domain.Department{}
	err := r.dbpool.QueryRowContext(ctx, `SELECT id, name, created_at FROM departments WHERE id = $1`, id).Scan(&d.ID, &d.Name, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvalidDepartment
		}
		return nil, err
	}

	return d, nil
}

func (r *Repository) GetPosition(ctx context.Context, id int64) (*domain.Position, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	p := &domain.Position{}
	err := r.dbpool.QueryRowContext(ctx, `SELECT id, name, created_at FROM positions WHERE id = $1`, id).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvalidPosition
		}
		return nil, err
	}

	return p, nil
}

// UpsertDepartment 按指定 ID 写入部门，部门 1 和 2 决定角色映射，因此 ID 必须固定
func (r *Repository) UpsertDepartment(ctx context.Context, d *domain.Department) error {
	query := `
		INSERT INTO departments (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		RETURNING created_at
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, d.ID, d.Name).Scan(&d.CreatedAt); err != nil {
		return err
	}

	// 显式写入 ID 后需要推进序列，避免后续自增冲突
	_, err := r.dbpool.ExecContext(ctx, `SELECT setval(pg_get_serial_sequence('departments', 'id'), (SELECT MAX(id) FROM departments))`)
	return err
}

func (r *Repository) UpsertPosition(ctx context.Context, p *domain.Position) error {
	query := `
		INSERT INTO positions (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		RETURNING created_at
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, p.ID, p.Name).Scan(&p.CreatedAt); err != nil {
		return err
	}

	_, err := r.dbpool.ExecContext(ctx, `SELECT setval(pg_get_serial_sequence('positions', 'id'), (SELECT MAX(id) FROM positions))`)
	return err
}
