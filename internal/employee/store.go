package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/integration-system/backend/internal/domain"
	"github.com/integration-system/backend/internal/utils"
)

// PrimaryStore 是员工权威记录所在的主库，写入只能通过事务进行
type PrimaryStore interface {
	BeginEmployeeTx(ctx context.Context) (domain.EmployeeTx, error)
	GetEmployee(ctx context.Context, id int64) (*domain.Employee, error)
	ListEmployees(ctx context.Context) ([]*domain.Employee, error)
	FindEmployeeIDByEmail(ctx context.Context, email string) (int64, error)
	DepartmentExists(ctx context.Context, id int64) (bool, error)
	PositionExists(ctx context.Context, id int64) (bool, error)
}

// MirrorStore 是不参与主库事务的副库
type MirrorStore interface {
	InsertEmployee(ctx context.Context, e *domain.MirrorEmployee) error
	GetEmployee(ctx context.Context, id int64) (*domain.MirrorEmployee, error)
	UpdateEmployee(ctx context.Context, e *domain.MirrorEmployee) (int64, error)
	DeleteEmployee(ctx context.Context, id int64) (int64, error)
	DeleteSalaries(ctx context.Context, employeeID int64) (int64, error)
	DeleteAttendances(ctx context.Context, employeeID int64) (int64, error)
}

type Identity interface {
	CreateForEmployee(ctx context.Context, e *domain.Employee) (*domain.Principal, string, error)
	AssignDepartmentRole(ctx context.Context, p *domain.Principal, departmentID *int64) error
	SyncRole(ctx context.Context, p *domain.Principal, departmentID *int64) (bool, error)
	SyncProfile(ctx context.Context, p *domain.Principal, fullName, email string) error
	Restore(ctx context.Context, snapshot *domain.Principal) error
	FindByEmail(ctx context.Context, email string) (*domain.Principal, error)
	Delete(ctx context.Context, id string) error
	DeleteByEmail(ctx context.Context, email string) error
}

type Input struct {
	FullName     string    `json:"fullName" validate:"required,max=100"`
	DateOfBirth  time.Time `json:"dateOfBirth" validate:"required"`
	Gender       *bool     `json:"gender"`
	PhoneNumber  string    `json:"phoneNumber" validate:"omitempty,max=20"`
	Email        string    `json:"email" validate:"required,email,max=100"`
	HireDate     time.Time `json:"hireDate" validate:"required"`
	DepartmentID *int64    `json:"departmentID" validate:"required"`
	PositionID   *int64    `json:"positionID" validate:"required"`
	Status       string    `json:"status" validate:"omitempty,max=50"`
}

func (in Input) employee() *domain.Employee {
	status := in.Status
	if status == "" {
		status = domain.EmployeeStatusWorking
	}
	return &domain.Employee{
		FullName:     in.FullName,
		DateOfBirth:  in.DateOfBirth,
		Gender:       in.Gender,
		PhoneNumber:  in.PhoneNumber,
		Email:        in.Email,
		HireDate:     in.HireDate,
		DepartmentID: in.DepartmentID,
		PositionID:   in.PositionID,
		Status:       status,
	}
}

type InsertResult struct {
	Employee *domain.Employee
	Username string
	Password string
}

// Store 负责员工在主库、副库和身份系统之间的一致写入
type Store struct {
	primary  PrimaryStore
	mirror   MirrorStore
	identity Identity
	validate *validator.Validate
}

func NewStore(primary PrimaryStore, mirror MirrorStore, identity Identity, validate *validator.Validate) *Store {
	return &Store{
		primary:  primary,
		mirror:   mirror,
		identity: identity,
		validate: validate,
	}
}

func logState(ctx context.Context, id int64, state State, args ...any) {
	args = append([]any{"employee_id", id, "state", state}, args...)
	slog.InfoContext(ctx, "员工状态变更", args...)
}

// Validate 检查新增员工的前置条件。返回 ValidationFailed 时 error 为 validator.ValidationErrors
func (s *Store) Validate(ctx context.Context, in Input) (domain.ValidationOutcome, error) {
	return s.validateFor(ctx, 0, in)
}

// ValidateUpdate 与 Validate 相同，但员工自己的邮箱不算重复
func (s *Store) ValidateUpdate(ctx context.Context, id int64, in Input) (domain.ValidationOutcome, error) {
	return s.validateFor(ctx, id, in)
}

func (s *Store) validateFor(ctx context.Context, selfID int64, in Input) (domain.ValidationOutcome, error) {
	if err := s.validate.Struct(in); err != nil {
		return domain.ValidationFailed, err
	}

	ownerID, err := s.primary.FindEmployeeIDByEmail(ctx, in.Email)
	switch {
	case err == nil && ownerID != selfID:
		return domain.ValidationEmailAlreadyExists, nil
	case err != nil && !errors.Is(err, domain.ErrEmployeeNotFound):
		return "", err
	}

	principal, err := s.identity.FindByEmail(ctx, in.Email)
	switch {
	case err == nil && (selfID == 0 || principal.ID != domain.EmployeePrincipalID(selfID)):
		return domain.ValidationEmailAlreadyExists, nil
	case err != nil && !errors.Is(err, domain.ErrPrincipalNotFound):
		return "", err
	}

	ok, err := s.primary.DepartmentExists(ctx, *in.DepartmentID)
	if err != nil {
		return "", err
	}
	if !ok {
		return domain.ValidationInvalidDepartment, nil
	}

	ok, err = s.primary.PositionExists(ctx, *in.PositionID)
	if err != nil {
		return "", err
	}
	if !ok {
		return domain.ValidationInvalidPosition, nil
	}

	return domain.ValidationSuccess, nil
}

// Insert 在主库事务中写入员工，创建身份并分配角色，写入副库后才提交主库事务。
// 任一步骤失败时删除已创建的身份并回滚主库
func (s *Store) Insert(ctx context.Context, in Input) (*InsertResult, error) {
	employee := in.employee()
	sg := newSaga("insert")

	tx, err := s.primary.BeginEmployeeTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin primary transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tx.InsertEmployee(ctx, employee); err != nil {
		return nil, fmt.Errorf("insert primary employee: %w", err)
	}
	sg.employeeID = employee.ID
	sg.reach(stepPrimaryWritten)
	logState(ctx, employee.ID, StateProvisioning)

	principal, password, err := s.identity.CreateForEmployee(ctx, employee)
	if err != nil {
		sg.compensate(ctx)
		return nil, fmt.Errorf("create principal: %w", err)
	}
	sg.reach(stepPrincipalCreated)
	sg.onFailure("delete principal", func(ctx context.Context) error {
		return s.identity.Delete(ctx, principal.ID)
	})

	if err := s.identity.AssignDepartmentRole(ctx, principal, employee.DepartmentID); err != nil {
		sg.compensate(ctx)
		return nil, fmt.Errorf("assign role: %w", err)
	}
	sg.reach(stepRoleAssigned)

	if err := s.mirror.InsertEmployee(ctx, employee.Mirror()); err != nil {
		sg.compensate(ctx)
		return nil, fmt.Errorf("insert mirror employee: %w", err)
	}
	sg.reach(stepMirrorWritten)
	sg.onFailure("delete mirror employee", func(ctx context.Context) error {
		_, err := s.mirror.DeleteEmployee(ctx, employee.ID)
		return err
	})

	if err := tx.Commit(); err != nil {
		sg.compensate(ctx)
		return nil, fmt.Errorf("commit primary transaction: %w", err)
	}
	sg.reach(stepCommitted)
	logState(ctx, employee.ID, StateActive, "username", principal.Username)

	return &InsertResult{
		Employee: employee,
		Username: principal.Username,
		Password: password,
	}, nil
}

// Update 锁定主库中的员工行后依次更新主库、副库和身份，全部成功才提交主库事务
func (s *Store) Update(ctx context.Context, id int64, in Input) error {
	sg := newSaga("update")
	sg.employeeID = id

	tx, err := s.primary.BeginEmployeeTx(ctx)
	if err != nil {
		return fmt.Errorf("begin primary transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := tx.GetEmployeeForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			slog.Warn("要更新的员工不存在", "employee_id", id)
		}
		return err
	}
	logState(ctx, id, StateUpdating)

	updated := in.employee()
	updated.ID = id
	updated.CreatedAt = current.CreatedAt
	// 请求中没有 status 时保留原状态
	if in.Status == "" {
		updated.Status = current.Status
	}

	n, err := tx.UpdateEmployee(ctx, updated)
	if err != nil {
		return fmt.Errorf("update primary employee: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update primary employee %d: %w", id, domain.ErrNoRowsAffected)
	}
	sg.reach(stepPrimaryWritten)

	previous, err := s.mirror.GetEmployee(ctx, id)
	if err != nil {
		return fmt.Errorf("read mirror employee: %w", err)
	}

	n, err = s.mirror.UpdateEmployee(ctx, updated.Mirror())
	if err != nil {
		return fmt.Errorf("update mirror employee: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update mirror employee %d: %w", id, domain.ErrNoRowsAffected)
	}
	sg.reach(stepMirrorWritten)
	sg.onFailure("restore mirror employee", func(ctx context.Context) error {
		_, err := s.mirror.UpdateEmployee(ctx, previous)
		return err
	})

	principal, err := s.identity.FindByEmail(ctx, current.Email)
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			utils.Critical(ctx, "员工没有对应的身份", "employee_id", id, "email", current.Email)
		}
		sg.compensate(ctx)
		return fmt.Errorf("find principal by %q: %w", current.Email, err)
	}

	snapshot := *principal
	snapshot.Roles = append([]domain.Role(nil), principal.Roles...)

	if err := s.identity.SyncProfile(ctx, principal, updated.FullName, updated.Email); err != nil {
		sg.compensate(ctx)
		return fmt.Errorf("sync principal profile: %w", err)
	}
	sg.onFailure("restore principal", func(ctx context.Context) error {
		return s.identity.Restore(ctx, &snapshot)
	})

	if _, err := s.identity.SyncRole(ctx, principal, updated.DepartmentID); err != nil {
		sg.compensate(ctx)
		return fmt.Errorf("sync principal role: %w", err)
	}
	sg.reach(stepIdentitySynced)

	if err := tx.Commit(); err != nil {
		sg.compensate(ctx)
		return fmt.Errorf("commit primary transaction: %w", err)
	}
	sg.reach(stepCommitted)
	logState(ctx, id, StateActive)

	return nil
}

// Delete 以主库删除为准：主库提交后，副库和身份的清理失败只记录日志，不再影响结果
func (s *Store) Delete(ctx context.Context, id int64) error {
	sg := newSaga("delete")
	sg.employeeID = id

	tx, err := s.primary.BeginEmployeeTx(ctx)
	if err != nil {
		return fmt.Errorf("begin primary transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := tx.GetEmployeeForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			slog.Warn("要删除的员工不存在", "employee_id", id)
		}
		return err
	}

	n, err := tx.DeleteEmployee(ctx, id)
	if err != nil {
		return fmt.Errorf("delete primary employee: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete primary employee %d: %w", id, domain.ErrNoRowsAffected)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit primary transaction: %w", err)
	}
	sg.reach(stepCommitted)
	logState(ctx, id, StateDeleting)

	// 主库删除已经生效，后续清理不应被请求取消打断
	ctx = context.WithoutCancel(ctx)

	if _, err := s.mirror.DeleteSalaries(ctx, id); err != nil {
		slog.Error("删除副库工资记录失败", "employee_id", id, slog.String("error", err.Error()))
	}
	if _, err := s.mirror.DeleteAttendances(ctx, id); err != nil {
		slog.Error("删除副库考勤记录失败", "employee_id", id, slog.String("error", err.Error()))
	}
	n, err = s.mirror.DeleteEmployee(ctx, id)
	switch {
	case err != nil:
		slog.Error("删除副库员工失败", "employee_id", id, slog.String("error", err.Error()))
	case n == 0:
		slog.Warn("副库中不存在该员工", "employee_id", id)
	}
	sg.reach(stepMirrorCleaned)

	if err := s.identity.DeleteByEmail(ctx, current.Email); err != nil {
		utils.Critical(ctx, "主库已删除员工，但删除身份失败",
			"employee_id", id,
			"email", current.Email,
			"state", StateDeletedResidual,
			slog.String("error", err.Error()),
		)
		return nil
	}
	sg.reach(stepIdentityDeleted)
	logState(ctx, id, StateDeleted)

	return nil
}

func (s *Store) Get(ctx context.Context, id int64) (*domain.Employee, error) {
	return s.primary.GetEmployee(ctx, id)
}

func (s *Store) List(ctx context.Context) ([]*domain.Employee, error) {
	return s.primary.ListEmployees(ctx)
}
