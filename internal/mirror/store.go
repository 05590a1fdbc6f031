package mirror

import (
	"context"
	"errors"

	"github.com/integration-system/backend/internal/config"
	"github.com/integration-system/backend/internal/domain"
	"gorm.io/gorm"
)

// Store 维护副库中的员工副本。副库不参与主库事务，所有写入都是立即生效的
type Store struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewStore(cfg *config.Config, db *gorm.DB) *Store {
	return &Store{
		cfg: cfg,
		db:  db,
	}
}

func (s *Store) InsertEmployee(ctx context.Context, e *domain.MirrorEmployee) error {
	ctx, cancel := QueryContext(ctx, s.cfg)
	defer cancel()

	row := &Employee{
		ID:           e.ID,
		FullName:     e.FullName,
		DepartmentID: e.DepartmentID,
		PositionID:   e.PositionID,
		Status:       e.Status,
	}
	return s.db.WithContext(ctx).Create(row).Error
}

func (s *Store) GetEmployee(ctx context.Context, id int64) (*domain.MirrorEmployee, error) {
	ctx, cancel := QueryContext(ctx, s.cfg)
	defer cancel()

	row := &Employee{}
	if err := s.db.WithContext(ctx).First(row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}

	return row.Record(), nil
}

// UpdateEmployee 返回受影响的行数，为 0 表示副库中不存在该员工
func (s *Store) UpdateEmployee(ctx context.Context, e *domain.MirrorEmployee) (int64, error) {
	ctx, cancel := QueryContext(ctx, s.cfg)
	defer cancel()

	// 使用 map 更新，保证空的部门、职位也能写入
	result := s.db.WithContext(ctx).Model(&Employee{}).Where("id = ?", e.ID).Updates(map[string]any{
		"full_name":     e.FullName,
		"department_id": e.DepartmentID,
		"position_id":   e.PositionID,
		"status":        e.Status,
	})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (s *Store) DeleteEmployee(ctx context.Context, id int64) (int64, error) {
	ctx, cancel := QueryContext(ctx, s.cfg)
	defer cancel()

	result := s.db.WithContext(ctx).Delete(&Employee{}, id)
	return result.RowsAffected, result.Error
}

func (s *Store) DeleteSalaries(ctx context.Context, employeeID int64) (int64, error) {
	ctx, cancel := QueryContext(ctx, s.cfg)
	defer cancel()

	result := s.db.WithContext(ctx).Where("employee_id = ?", employeeID).Delete(&Salary{})
	return result.RowsAffected, result.Error
}

func (s *Store) DeleteAttendances(ctx context.Context, employeeID int64) (int64, error) {
	ctx, cancel := QueryContext(ctx, s.cfg)
	defer cancel()

	result := s.db.WithContext(ctx).Where("employee_id = ?", employeeID).Delete(&Attendance{})
	return result.RowsAffected, result.Error
}
