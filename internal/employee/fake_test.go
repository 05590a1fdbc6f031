package employee

import (
	"context"
	"errors"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/integration-system/backend/internal/domain"
)

var errBoom = errors.New("boom")

type fakePrimary struct {
	mu          sync.Mutex
	employees   map[int64]*domain.Employee
	departments map[int64]bool
	positions   map[int64]bool
	nextID      int64

	failCommit error
	committed  int

	// 模拟并发删除：读取成功但删除时行已不存在
	vanishOnDelete bool
}

func newFakePrimary() *fakePrimary {
	return &fakePrimary{
		employees:   map[int64]*domain.Employee{},
		departments: map[int64]bool{1: true, 2: true, 3: true},
		positions:   map[int64]bool{1: true, 2: true},
		nextID:      100,
	}
}

func (p *fakePrimary) BeginEmployeeTx(_ context.Context) (domain.EmployeeTx, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &fakeTx{p: p, staged: maps.Clone(p.employees)}, nil
}

func (p *fakePrimary) GetEmployee(_ context.Context, id int64) (*domain.Employee, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.employees[id]
	if !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	copied := *e
	return &copied, nil
}

func (p *fakePrimary) ListEmployees(_ context.Context) ([]*domain.Employee, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	list := make([]*domain.Employee, 0, len(p.employees))
	for _, e := range p.employees {
		copied := *e
		list = append(list, &copied)
	}
	return list, nil
}

func (p *fakePrimary) FindEmployeeIDByEmail(_ context.Context, email string) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, e := range p.employees {
		if strings.EqualFold(e.Email, email) {
			return id, nil
		}
	}
	return 0, domain.ErrEmployeeNotFound
}

func (p *fakePrimary) DepartmentExists(_ context.Context, id int64) (bool, error) {
	return p.departments[id], nil
}

func (p *fakePrimary) PositionExists(_ context.Context, id int64) (bool, error) {
	return p.positions[id], nil
}

func (p *fakePrimary) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.employees)
}

type fakeTx struct {
	p      *fakePrimary
	staged map[int64]*domain.Employee
	done   bool
}

func (tx *fakeTx) InsertEmployee(_ context.Context, e *domain.Employee) error {
	tx.p.mu.Lock()
	defer tx.p.mu.Unlock()
	tx.p.nextID++
	e.ID = tx.p.nextID
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = e.CreatedAt
	copied := *e
	tx.staged[e.ID] = &copied
	return nil
}

func (tx *fakeTx) GetEmployeeForUpdate(_ context.Context, id int64) (*domain.Employee, error) {
	e, ok := tx.staged[id]
	if !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	copied := *e
	return &copied, nil
}

func (tx *fakeTx) UpdateEmployee(_ context.Context, e *domain.Employee) (int64, error) {
	if _, ok := tx.staged[e.ID]; !ok {
		return 0, nil
	}
	copied := *e
	tx.staged[e.ID] = &copied
	return 1, nil
}

func (tx *fakeTx) DeleteEmployee(_ context.Context, id int64) (int64, error) {
	if _, ok := tx.staged[id]; !ok || tx.p.vanishOnDelete {
		return 0, nil
	}
	delete(tx.staged, id)
	return 1, nil
}

func (tx *fakeTx) Commit() error {
	tx.p.mu.Lock()
	defer tx.p.mu.Unlock()
	if tx.done {
		return errors.New("tx done")
	}
	tx.done = true
	if tx.p.failCommit != nil {
		return tx.p.failCommit
	}
	tx.p.employees = tx.staged
	tx.p.committed++
	return nil
}

func (tx *fakeTx) Rollback() error {
	if tx.done {
		return errors.New("tx done")
	}
	tx.done = true
	return nil
}

type fakeMirror struct {
	mu          sync.Mutex
	employees   map[int64]*domain.MirrorEmployee
	salaries    map[int64]int
	attendances map[int64]int
	writes      int

	failInsert error
	failDelete error
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{
		employees:   map[int64]*domain.MirrorEmployee{},
		salaries:    map[int64]int{},
		attendances: map[int64]int{},
	}
}

func (m *fakeMirror) InsertEmployee(_ context.Context, e *domain.MirrorEmployee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.failInsert != nil {
		return m.failInsert
	}
	copied := *e
	m.employees[e.ID] = &copied
	return nil
}

func (m *fakeMirror) GetEmployee(_ context.Context, id int64) (*domain.MirrorEmployee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employees[id]
	if !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	copied := *e
	return &copied, nil
}

func (m *fakeMirror) UpdateEmployee(_ context.Context, e *domain.MirrorEmployee) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if _, ok := m.employees[e.ID]; !ok {
		return 0, nil
	}
	copied := *e
	m.employees[e.ID] = &copied
	return 1, nil
}

func (m *fakeMirror) DeleteEmployee(_ context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.failDelete != nil {
		return 0, m.failDelete
	}
	if _, ok := m.employees[id]; !ok {
		return 0, nil
	}
	delete(m.employees, id)
	return 1, nil
}

func (m *fakeMirror) DeleteSalaries(_ context.Context, employeeID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	n := m.salaries[employeeID]
	delete(m.salaries, employeeID)
	return int64(n), nil
}

func (m *fakeMirror) DeleteAttendances(_ context.Context, employeeID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	n := m.attendances[employeeID]
	delete(m.attendances, employeeID)
	return int64(n), nil
}

type fakeIdentity struct {
	mu         sync.Mutex
	principals map[string]*domain.Principal
	writes     int

	failCreate  error
	failRole    error
	failDelete  error
	failProfile error
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{principals: map[string]*domain.Principal{}}
}

func (f *fakeIdentity) byEmail(email string) *domain.Principal {
	for _, p := range f.principals {
		if strings.EqualFold(p.Email, email) {
			return p
		}
	}
	return nil
}

func (f *fakeIdentity) CreateForEmployee(_ context.Context, e *domain.Employee) (*domain.Principal, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.failCreate != nil {
		return nil, "", f.failCreate
	}
	p := &domain.Principal{
		ID:       domain.EmployeePrincipalID(e.ID),
		Username: strings.ToLower(strings.ReplaceAll(e.FullName, " ", "")),
		Email:    e.Email,
	}
	copied := *p
	f.principals[p.ID] = &copied
	return p, e.PhoneNumber, nil
}

func (f *fakeIdentity) AssignDepartmentRole(_ context.Context, p *domain.Principal, departmentID *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.failRole != nil {
		return f.failRole
	}
	role := domain.RoleForDepartment(departmentID)
	p.Roles = []domain.Role{role}
	if stored, ok := f.principals[p.ID]; ok {
		stored.Roles = []domain.Role{role}
	}
	return nil
}

func (f *fakeIdentity) SyncRole(ctx context.Context, p *domain.Principal, departmentID *int64) (bool, error) {
	if p.HasOnlyRole(domain.RoleForDepartment(departmentID)) {
		return false, nil
	}
	return true, f.AssignDepartmentRole(ctx, p, departmentID)
}

func (f *fakeIdentity) SyncProfile(_ context.Context, p *domain.Principal, fullName, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failProfile != nil {
		return f.failProfile
	}
	if owner := f.byEmail(email); owner != nil && owner.ID != p.ID {
		return domain.ErrEmailAlreadyExists
	}
	f.writes++
	p.Email = email
	p.Username = strings.ToLower(strings.ReplaceAll(fullName, " ", ""))
	copied := *p
	f.principals[p.ID] = &copied
	return nil
}

func (f *fakeIdentity) Restore(_ context.Context, snapshot *domain.Principal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	copied := *snapshot
	f.principals[snapshot.ID] = &copied
	return nil
}

func (f *fakeIdentity) FindByEmail(_ context.Context, email string) (*domain.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.byEmail(email)
	if p == nil {
		return nil, domain.ErrPrincipalNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeIdentity) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.failDelete != nil {
		return f.failDelete
	}
	delete(f.principals, id)
	return nil
}

func (f *fakeIdentity) DeleteByEmail(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.failDelete != nil {
		return f.failDelete
	}
	if p := f.byEmail(email); p != nil {
		delete(f.principals, p.ID)
	}
	return nil
}

func (f *fakeIdentity) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.principals)
}
