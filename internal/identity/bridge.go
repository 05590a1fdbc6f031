package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/integration-system/backend/internal/config"
	"github.com/integration-system/backend/internal/domain"
	"github.com/integration-system/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// Store 是身份系统的持久化接口。查找不到时返回 domain.ErrPrincipalNotFound，
// 其余失败返回 *domain.IdentityError 或基础设施错误
type Store interface {
	CreatePrincipal(ctx context.Context, p *domain.Principal) error
	FindByID(ctx context.Context, id string) (*domain.Principal, error)
	FindByEmail(ctx context.Context, email string) (*domain.Principal, error)
	FindByUsername(ctx context.Context, username string) (*domain.Principal, error)
	UpdatePrincipal(ctx context.Context, p *domain.Principal) error
	DeletePrincipal(ctx context.Context, id string) error
	RoleExists(ctx context.Context, role domain.Role) (bool, error)
	CreateRole(ctx context.Context, role domain.Role) error
	SetRoles(ctx context.Context, id string, roles []domain.Role) error
	HasAnyWithRole(ctx context.Context, role domain.Role) (bool, error)
}

type Bridge struct {
	cfg   *config.Config
	store Store
	now   func() time.Time
}

func NewBridge(cfg *config.Config, store Store) *Bridge {
	return &Bridge{
		cfg:   cfg,
		store: store,
		now:   time.Now,
	}
}

// UniqueUsername 为姓名生成身份系统中尚未被占用的登录名。
// ownerID 非空时，该身份自己占用的登录名视为可用
func (b *Bridge) UniqueUsername(ctx context.Context, fullName, ownerID string) (string, error) {
	base := DeriveUsername(fullName, b.now())

	for attempt := 0; attempt < b.cfg.Identity.UsernameMaxAttempts; attempt++ {
		candidate := base
		if attempt > 0 {
			candidate = base + strconv.Itoa(attempt)
		}

		existing, err := b.store.FindByUsername(ctx, candidate)
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("look up username %q: %w", candidate, err)
		}
		if ownerID != "" && existing.ID == ownerID {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: base %q after %d attempts", domain.ErrUsernameExhausted, base, b.cfg.Identity.UsernameMaxAttempts)
}

// InitialPassword 优先使用手机号作为初始密码，长度不足时生成随机强密码
func (b *Bridge) InitialPassword(phone string) string {
	phone = strings.TrimSpace(phone)
	if len(phone) >= b.cfg.Identity.MinPasswordLength {
		return phone
	}
	return utils.GenerateRandomPassword(b.cfg.NewUser.PasswordLength)
}

// CreateForEmployee 以员工 ID 为键创建身份，返回身份和明文初始密码
func (b *Bridge) CreateForEmployee(ctx context.Context, employee *domain.Employee) (*domain.Principal, string, error) {
	id := domain.EmployeePrincipalID(employee.ID)

	username, err := b.UniqueUsername(ctx, employee.FullName, "")
	if err != nil {
		return nil, "", err
	}

	password := b.InitialPassword(employee.PhoneNumber)
	principal, err := b.create(ctx, id, username, employee.Email, password)
	if err != nil {
		return nil, "", err
	}

	return principal, password, nil
}

// CreateAdmin 创建不关联员工的管理员身份
func (b *Bridge) CreateAdmin(ctx context.Context, username, email, password string) (*domain.Principal, error) {
	principal, err := b.create(ctx, uuid.NewString(), username, email, password)
	if err != nil {
		return nil, err
	}

	if err := b.AssignRole(ctx, principal, domain.RoleAdmin); err != nil {
		if delErr := b.store.DeletePrincipal(ctx, principal.ID); delErr != nil {
			slog.Error("删除角色分配失败的管理员身份失败", "id", principal.ID, slog.String("error", delErr.Error()))
		}
		return nil, err
	}

	return principal, nil
}

func (b *Bridge) create(ctx context.Context, id, username, email, password string) (*domain.Principal, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	principal := &domain.Principal{
		ID:            id,
		Username:      username,
		Email:         email,
		PasswordHash:  string(hash),
		SecurityStamp: uuid.NewString(),
	}
	if err := b.store.CreatePrincipal(ctx, principal); err != nil {
		return nil, err
	}

	return principal, nil
}

// AssignDepartmentRole 按部门推导角色，并用它替换身份当前的全部角色
func (b *Bridge) AssignDepartmentRole(ctx context.Context, principal *domain.Principal, departmentID *int64) error {
	return b.AssignRole(ctx, principal, domain.RoleForDepartment(departmentID))
}

func (b *Bridge) AssignRole(ctx context.Context, principal *domain.Principal, role domain.Role) error {
	exists, err := b.store.RoleExists(ctx, role)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NewIdentityError("assign role", domain.IdentityCodeRoleNotFound, fmt.Sprintf("role %q does not exist", role))
	}

	if err := b.store.SetRoles(ctx, principal.ID, []domain.Role{role}); err != nil {
		return err
	}

	principal.Roles = []domain.Role{role}
	slog.Info("已分配角色", "username", principal.Username, "role", role)
	return nil
}

// SyncRole 仅在身份当前角色与部门对应的角色不一致时重新分配，返回是否发生了变更
func (b *Bridge) SyncRole(ctx context.Context, principal *domain.Principal, departmentID *int64) (bool, error) {
	role := domain.RoleForDepartment(departmentID)
	if principal.HasOnlyRole(role) {
		return false, nil
	}

	if err := b.AssignRole(ctx, principal, role); err != nil {
		return false, err
	}
	return true, nil
}

// SyncProfile 让身份的邮箱和登录名跟随员工资料变化，在 principal 上原地修改并持久化。
// 新邮箱被其他身份占用时返回 domain.ErrEmailAlreadyExists
func (b *Bridge) SyncProfile(ctx context.Context, principal *domain.Principal, fullName, email string) error {
	changed := false

	if !strings.EqualFold(principal.Email, email) {
		owner, err := b.store.FindByEmail(ctx, email)
		switch {
		case err == nil && owner.ID != principal.ID:
			return domain.ErrEmailAlreadyExists
		case err != nil && !errors.Is(err, domain.ErrPrincipalNotFound):
			return err
		}
		principal.Email = email
		changed = true
	}

	if !KeepsUsername(principal.Username, fullName) {
		username, err := b.UniqueUsername(ctx, fullName, principal.ID)
		if err != nil {
			return err
		}
		principal.Username = username
		changed = true
	}

	if !changed {
		return nil
	}

	principal.SecurityStamp = uuid.NewString()
	return b.store.UpdatePrincipal(ctx, principal)
}

// Restore 将身份恢复为之前保存的快照，用于撤销更新过程中已经生效的修改
func (b *Bridge) Restore(ctx context.Context, snapshot *domain.Principal) error {
	if err := b.store.UpdatePrincipal(ctx, snapshot); err != nil {
		return err
	}
	if len(snapshot.Roles) == 0 {
		return nil
	}
	return b.store.SetRoles(ctx, snapshot.ID, snapshot.Roles)
}

func (b *Bridge) FindByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	return b.store.FindByEmail(ctx, email)
}

func (b *Bridge) FindByID(ctx context.Context, id string) (*domain.Principal, error) {
	return b.store.FindByID(ctx, id)
}

// EmailTaken 判断邮箱是否已被任一身份占用
func (b *Bridge) EmailTaken(ctx context.Context, email string) (bool, error) {
	_, err := b.store.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrPrincipalNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (b *Bridge) Delete(ctx context.Context, id string) error {
	return b.store.DeletePrincipal(ctx, id)
}

// DeleteByEmail 删除邮箱对应的身份，身份不存在时视为已删除
func (b *Bridge) DeleteByEmail(ctx context.Context, email string) error {
	if email == "" {
		return errors.New("empty email")
	}

	principal, err := b.store.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrPrincipalNotFound) {
		slog.Warn("邮箱对应的身份不存在，无需删除", "email", email)
		return nil
	}
	if err != nil {
		return err
	}

	if err := b.store.DeletePrincipal(ctx, principal.ID); err != nil {
		return err
	}

	slog.Info("已删除身份", "email", email, "id", principal.ID)
	return nil
}

// Authenticate 使用登录名或邮箱校验密码
func (b *Bridge) Authenticate(ctx context.Context, login, password string) (*domain.Principal, error) {
	principal, err := b.store.FindByUsername(ctx, login)
	if errors.Is(err, domain.ErrPrincipalNotFound) {
		principal, err = b.store.FindByEmail(ctx, login)
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, domain.NewIdentityError("authenticate", domain.IdentityCodeInvalidPassword, "password mismatch")
		}
		return nil, err
	}

	return principal, nil
}

func (b *Bridge) HasAdmin(ctx context.Context) (bool, error) {
	return b.store.HasAnyWithRole(ctx, domain.RoleAdmin)
}

// EnsureRoles 创建缺失的系统角色
func (b *Bridge) EnsureRoles(ctx context.Context) error {
	for _, role := range domain.AllRoles {
		exists, err := b.store.RoleExists(ctx, role)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := b.store.CreateRole(ctx, role); err != nil {
			return fmt.Errorf("create role %s: %w", role, err)
		}
	}
	return nil
}
