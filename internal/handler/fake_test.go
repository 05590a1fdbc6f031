package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/integration-system/backend/internal/config"
	"github.com/integration-system/backend/internal/domain"
	"github.com/integration-system/backend/internal/employee"
	"github.com/stretchr/testify/require"
)

type fakeEmployees struct {
	employees map[int64]*domain.Employee
	outcome   domain.ValidationOutcome
	insertErr error
	updateErr error
	deleteErr error
	deleted   []int64
	updated   []int64
}

func (f *fakeEmployees) Validate(ctx context.Context, in employee.Input) (domain.ValidationOutcome, error) {
	if f.outcome == "" {
		return domain.ValidationSuccess, nil
	}
	return f.outcome, nil
}

func (f *fakeEmployees) ValidateUpdate(ctx context.Context, id int64, in employee.Input) (domain.ValidationOutcome, error) {
	return f.Validate(ctx, in)
}

func (f *fakeEmployees) Insert(ctx context.Context, in employee.Input) (*employee.InsertResult, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	e := &domain.Employee{ID: int64(len(f.employees) + 1), FullName: in.FullName, Email: in.Email}
	f.employees[e.ID] = e
	return &employee.InsertResult{Employee: e, Username: "username", Password: "0912345678"}, nil
}

func (f *fakeEmployees) Update(ctx context.Context, id int64, in employee.Input) error {
	if _, ok := f.employees[id]; !ok {
		return domain.ErrEmployeeNotFound
	}
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, id)
	return nil
}

func (f *fakeEmployees) Delete(ctx context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.employees[id]; !ok {
		return domain.ErrEmployeeNotFound
	}
	delete(f.employees, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeEmployees) Get(ctx context.Context, id int64) (*domain.Employee, error) {
	e, ok := f.employees[id]
	if !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeEmployees) List(ctx context.Context) ([]*domain.Employee, error) {
	out := make([]*domain.Employee, 0, len(f.employees))
	for id := int64(1); id <= int64(len(f.employees))+10; id++ {
		if e, ok := f.employees[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeSalaries struct {
	records  []*domain.SalaryRecord
	exists   bool
	inserted []domain.SalaryInput
}

func (f *fakeSalaries) Insert(ctx context.Context, in domain.SalaryInput) (*domain.SalaryRecord, error) {
	f.inserted = append(f.inserted, in)
	return &domain.SalaryRecord{ID: int64(len(f.inserted)), EmployeeID: in.EmployeeID, SalaryMonth: in.SalaryMonth, BaseSalary: in.BaseSalary}, nil
}

func (f *fakeSalaries) Exists(ctx context.Context, employeeID int64, month time.Time) (bool, error) {
	return f.exists, nil
}

func (f *fakeSalaries) History(ctx context.Context, employeeID int64, month time.Time) (*domain.SalaryRecord, error) {
	for _, r := range f.records {
		if r.EmployeeID == employeeID && r.SalaryMonth.Equal(month) {
			return r, nil
		}
	}
	return nil, domain.ErrSalaryNotFound
}

func (f *fakeSalaries) List(ctx context.Context) ([]*domain.SalaryRecord, error) {
	return f.records, nil
}

func (f *fakeSalaries) ListForPeriod(ctx context.Context, year int, month time.Month) ([]*domain.SalaryRecord, error) {
	var out []*domain.SalaryRecord
	for _, r := range f.records {
		if r.SalaryMonth.Year() == year && r.SalaryMonth.Month() == month {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeAttendances struct {
	upserted []*domain.AttendanceRecord
}

func (f *fakeAttendances) List(ctx context.Context) ([]*domain.AttendanceRecord, error) {
	return f.upserted, nil
}

func (f *fakeAttendances) GetByID(ctx context.Context, id int64) (*domain.AttendanceRecord, error) {
	for _, r := range f.upserted {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrAttendanceNotFound
}

func (f *fakeAttendances) ListByEmployee(ctx context.Context, employeeID int64) ([]*domain.AttendanceRecord, error) {
	return nil, nil
}

func (f *fakeAttendances) Update(ctx context.Context, record *domain.AttendanceRecord) (*domain.AttendanceRecord, error) {
	for i, r := range f.upserted {
		if r.ID == record.ID {
			f.upserted[i] = record
			return record, nil
		}
	}
	return nil, domain.ErrAttendanceNotFound
}

func (f *fakeAttendances) Upsert(ctx context.Context, record *domain.AttendanceRecord) (*domain.AttendanceRecord, error) {
	record.ID = int64(len(f.upserted) + 1)
	f.upserted = append(f.upserted, record)
	return record, nil
}

type fakeNotifier struct {
	deviation bool
	deletions []int64
	entries   []domain.NotificationEntry
}

func (f *fakeNotifier) CheckSalaryDeviation(ctx context.Context, in domain.SalaryInput) (bool, error) {
	return f.deviation, nil
}

func (f *fakeNotifier) CheckAnniversaries(ctx context.Context) (int, error) {
	return 2, nil
}

func (f *fakeNotifier) CheckAbsence(ctx context.Context, employeeID int64, month time.Time) (bool, error) {
	return true, nil
}

func (f *fakeNotifier) NotifyDeletion(ctx context.Context, employeeID int64, deleted bool) (bool, error) {
	if deleted {
		f.deletions = append(f.deletions, employeeID)
	}
	return deleted, nil
}

func (f *fakeNotifier) All(ctx context.Context) ([]domain.NotificationEntry, error) {
	return f.entries, nil
}

type fakeAuth struct {
	principal *domain.Principal
	password  string
	hasAdmin  bool
	admins    []string
}

func (f *fakeAuth) Authenticate(ctx context.Context, login, password string) (*domain.Principal, error) {
	if f.principal == nil || (login != f.principal.Username && login != f.principal.Email) {
		return nil, domain.ErrPrincipalNotFound
	}
	if password != f.password {
		return nil, domain.NewIdentityError("authenticate", domain.IdentityCodeInvalidPassword, "password mismatch")
	}
	return f.principal, nil
}

func (f *fakeAuth) HasAdmin(ctx context.Context) (bool, error) {
	return f.hasAdmin, nil
}

func (f *fakeAuth) CreateAdmin(ctx context.Context, username, email, password string) (*domain.Principal, error) {
	f.admins = append(f.admins, username)
	return &domain.Principal{ID: "admin-id", Username: username, Email: email, Roles: []domain.Role{domain.RoleAdmin}}, nil
}

type fakeLookups struct{}

func (fakeLookups) GetAllDepartments(ctx context.Context) ([]*domain.Department, error) {
	return []*domain.Department{{ID: 1, Name: "HR"}, {ID: 2, Name: "Payroll"}}, nil
}

func (fakeLookups) GetAllPositions(ctx context.Context) ([]*domain.Position, error) {
	return []*domain.Position{{ID: 1, Name: "Staff"}}, nil
}

func (l fakeLookups) GetDepartment(ctx context.Context, id int64) (*domain.Department, error) {
	departments, _ := l.GetAllDepartments(ctx)
	for _, d := range departments {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, domain.ErrInvalidDepartment
}

func (l fakeLookups) GetPosition(ctx context.Context, id int64) (*domain.Position, error) {
	positions, _ := l.GetAllPositions(ctx)
	for _, p := range positions {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrInvalidPosition
}

type fakeMail struct {
	messages []domain.MailMessage
	failTo   string
}

func (f *fakeMail) Publish(ctx context.Context, message domain.MailMessage) error {
	if message.To == f.failTo {
		return context.DeadlineExceeded
	}
	f.messages = append(f.messages, message)
	return nil
}

type testEnv struct {
	h           *Handler
	employees   *fakeEmployees
	salaries    *fakeSalaries
	attendances *fakeAttendances
	notifier    *fakeNotifier
	auth        *fakeAuth
	mail        *fakeMail
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Issuer = "test"
	cfg.JWT.Expiration = 60

	validate, trans, err := NewValidator()
	require.NoError(t, err)

	env := &testEnv{
		employees:   &fakeEmployees{employees: map[int64]*domain.Employee{}},
		salaries:    &fakeSalaries{},
		attendances: &fakeAttendances{},
		notifier:    &fakeNotifier{},
		auth:        &fakeAuth{},
		mail:        &fakeMail{},
	}
	env.h = NewHandler(cfg, validate, trans, Services{
		Employees:   env.employees,
		Salaries:    env.salaries,
		Attendances: env.attendances,
		Notifier:    env.notifier,
		Auth:        env.auth,
		Lookups:     fakeLookups{},
		Mail:        env.mail,
	})
	env.h.RegisterRoutes()
	return env
}

func (env *testEnv) token(t *testing.T, roles ...domain.Role) string {
	t.Helper()
	ss, _, err := env.h.issueToken(&domain.Principal{ID: "1", Roles: roles}, time.Now())
	require.NoError(t, err)
	return ss
}

func (env *testEnv) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.h.Mux.ServeHTTP(rec, req)
	return rec
}
