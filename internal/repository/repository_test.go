package repository

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/integration-system/backend/internal/config"
	"github.com/integration-system/backend/internal/domain"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 需要真实的 PostgreSQL，设置 POSTGRES_TEST_DSN 后运行
func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	dbpool, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbpool.Close() })

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 10

	repo := NewRepository(cfg, dbpool)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func testEmployee(email string) *domain.Employee {
	return &domain.Employee{
		FullName:    "Lan Nguyen",
		DateOfBirth: time.Date(1990, time.April, 1, 0, 0, 0, 0, time.UTC),
		PhoneNumber: "0901234567",
		Email:       email,
		HireDate:    time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC),
		Status:      domain.EmployeeStatusWorking,
	}
}

func uniqueEmail(prefix string) string {
	return prefix + "." + strings.ReplaceAll(uuid.NewString(), "-", "") + "@example.com"
}

func TestEmployeeTx_InsertUpdateDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	tx, err := repo.BeginEmployeeTx(ctx)
	require.NoError(t, err)
	e := testEmployee(uniqueEmail("lan"))
	require.NoError(t, tx.InsertEmployee(ctx, e))
	require.NoError(t, tx.Commit())

	assert.NotZero(t, e.ID)
	assert.False(t, e.CreatedAt.IsZero())
	t.Cleanup(func() {
		_, _ = repo.dbpool.ExecContext(context.Background(), `DELETE FROM employees WHERE id = $1`, e.ID)
	})

	id, err := repo.FindEmployeeIDByEmail(ctx, strings.ToUpper(e.Email))
	require.NoError(t, err)
	assert.Equal(t, e.ID, id)

	tx, err = repo.BeginEmployeeTx(ctx)
	require.NoError(t, err)
	locked, err := tx.GetEmployeeForUpdate(ctx, e.ID)
	require.NoError(t, err)
	locked.Status = domain.EmployeeStatusInactive
	n, err := tx.UpdateEmployee(ctx, locked)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, tx.Commit())

	stored, err := repo.GetEmployee(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EmployeeStatusInactive, stored.Status)

	// 回滚的删除不生效
	tx, err = repo.BeginEmployeeTx(ctx)
	require.NoError(t, err)
	n, err = tx.DeleteEmployee(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, tx.Rollback())

	_, err = repo.GetEmployee(ctx, e.ID)
	require.NoError(t, err)

	tx, err = repo.BeginEmployeeTx(ctx)
	require.NoError(t, err)
	n, err = tx.DeleteEmployee(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, tx.Commit())

	_, err = repo.GetEmployee(ctx, e.ID)
	assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)
}

func TestEmployeeTx_DuplicateEmail(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	email := uniqueEmail("dup")

	tx, err := repo.BeginEmployeeTx(ctx)
	require.NoError(t, err)
	first := testEmployee(email)
	require.NoError(t, tx.InsertEmployee(ctx, first))
	require.NoError(t, tx.Commit())
	t.Cleanup(func() {
		_, _ = repo.dbpool.ExecContext(context.Background(), `DELETE FROM employees WHERE id = $1`, first.ID)
	})

	tx, err = repo.BeginEmployeeTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	err = tx.InsertEmployee(ctx, testEmployee(email))
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestPrincipalStore(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for _, role := range domain.AllRoles {
		require.NoError(t, repo.CreateRole(ctx, role))
	}

	id := uuid.NewString()
	p := &domain.Principal{
		ID:            id,
		Username:      "user" + strings.ReplaceAll(id, "-", ""),
		Email:         uniqueEmail("principal"),
		PasswordHash:  "hash",
		SecurityStamp: "s1",
	}
	require.NoError(t, repo.CreatePrincipal(ctx, p))
	t.Cleanup(func() { _ = repo.DeletePrincipal(context.Background(), id) })
	assert.False(t, p.CreatedAt.IsZero())

	dup := *p
	dup.ID = uuid.NewString()
	dup.Email = uniqueEmail("other")
	err := repo.CreatePrincipal(ctx, &dup)
	var identityErr *domain.IdentityError
	require.ErrorAs(t, err, &identityErr)
	assert.True(t, identityErr.HasCode(domain.IdentityCodeDuplicateUserName))

	require.NoError(t, repo.SetRoles(ctx, id, []domain.Role{domain.RoleHR, domain.RoleEmployee}))
	require.NoError(t, repo.SetRoles(ctx, id, []domain.Role{domain.RolePayrollManagement}))

	stored, err := repo.FindByEmail(ctx, strings.ToUpper(p.Email))
	require.NoError(t, err)
	assert.Equal(t, []domain.Role{domain.RolePayrollManagement}, stored.Roles)

	// 角色不存在时整个替换回滚，原有角色保留
	err = repo.SetRoles(ctx, id, []domain.Role{domain.RoleHR, "Missing"})
	require.ErrorAs(t, err, &identityErr)
	assert.True(t, identityErr.HasCode(domain.IdentityCodeRoleNotFound))

	stored, err = repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []domain.Role{domain.RolePayrollManagement}, stored.Roles)

	stored.SecurityStamp = "s2"
	require.NoError(t, repo.UpdatePrincipal(ctx, stored))
	stored, err = repo.FindByUsername(ctx, p.Username)
	require.NoError(t, err)
	assert.Equal(t, "s2", stored.SecurityStamp)

	require.NoError(t, repo.DeletePrincipal(ctx, id))
	_, err = repo.FindByID(ctx, id)
	assert.ErrorIs(t, err, domain.ErrPrincipalNotFound)
}

func TestLookups(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertDepartment(ctx, &domain.Department{ID: domain.DepartmentHR, Name: "Human Resources"}))

	d, err := repo.GetDepartment(ctx, domain.DepartmentHR)
	require.NoError(t, err)
	assert.Equal(t, "Human Resources", d.Name)

	exists, err := repo.DepartmentExists(ctx, domain.DepartmentHR)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.GetDepartment(ctx, 1<<40)
	assert.ErrorIs(t, err, domain.ErrInvalidDepartment)

	_, err = repo.GetPosition(ctx, 1<<40)
	assert.ErrorIs(t, err, domain.ErrInvalidPosition)
}
