package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/integration-system/backend/internal/config"
	"github.com/integration-system/backend/internal/domain"
	"github.com/integration-system/backend/internal/employee"
)

type EmployeeService interface {
	Validate(ctx context.Context, in employee.Input) (domain.ValidationOutcome, error)
	ValidateUpdate(ctx context.Context, id int64, in employee.Input) (domain.ValidationOutcome, error)
	Insert(ctx context.Context, in employee.Input) (*employee.InsertResult, error)
	Update(ctx context.Context, id int64, in employee.Input) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Employee, error)
	List(ctx context.Context) ([]*domain.Employee, error)
}

type SalaryService interface {
	Insert(ctx context.Context, in domain.SalaryInput) (*domain.SalaryRecord, error)
	Exists(ctx context.Context, employeeID int64, month time.Time) (bool, error)
	History(ctx context.Context, employeeID int64, month time.Time) (*domain.SalaryRecord, error)
	List(ctx context.Context) ([]*domain.SalaryRecord, error)
	ListForPeriod(ctx context.Context, year int, month time.Month) ([]*domain.SalaryRecord, error)
}

type AttendanceService interface {
	List(ctx context.Context) ([]*domain.AttendanceRecord, error)
	GetByID(ctx context.Context, id int64) (*domain.AttendanceRecord, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]*domain.AttendanceRecord, error)
	Upsert(ctx context.Context, record *domain.AttendanceRecord) (*domain.AttendanceRecord, error)
	Update(ctx context.Context, record *domain.AttendanceRecord) (*domain.AttendanceRecord, error)
}

type Notifier interface {
	CheckSalaryDeviation(ctx context.Context, in domain.SalaryInput) (bool, error)
	CheckAnniversaries(ctx context.Context) (int, error)
	CheckAbsence(ctx context.Context, employeeID int64, month time.Time) (bool, error)
	NotifyDeletion(ctx context.Context, employeeID int64, deleted bool) (bool, error)
	All(ctx context.Context) ([]domain.NotificationEntry, error)
}

type Authenticator interface {
	Authenticate(ctx context.Context, login, password string) (*domain.Principal, error)
	HasAdmin(ctx context.Context) (bool, error)
	CreateAdmin(ctx context.Context, username, email, password string) (*domain.Principal, error)
}

type Lookups interface {
	GetAllDepartments(ctx context.Context) ([]*domain.Department, error)
	GetAllPositions(ctx context.Context) ([]*domain.Position, error)
	GetDepartment(ctx context.Context, id int64) (*domain.Department, error)
	GetPosition(ctx context.Context, id int64) (*domain.Position, error)
}

type MailQueue interface {
	Publish(ctx context.Context, message domain.MailMessage) error
}

// Services 汇总 handler 依赖的所有组件
type Services struct {
	Employees   EmployeeService
	Salaries    SalaryService
	Attendances AttendanceService
	Notifier    Notifier
	Auth        Authenticator
	Lookups     Lookups
	Mail        MailQueue
}

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	translator ut.Translator
	Services

	Mux *chi.Mux
}

func NewValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, err
	}
	return validate, trans, nil
}

func NewHandler(cfg *config.Config, validate *validator.Validate, trans ut.Translator, svc Services) *Handler {
	return &Handler{
		validate:   validate,
		config:     cfg,
		translator: trans,
		Services:   svc,

		Mux: chi.NewRouter(),
	}
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	readers := []domain.Role{domain.RoleAdmin, domain.RoleHR, domain.RolePayrollManagement}
	hr := []domain.Role{domain.RoleAdmin, domain.RoleHR}
	payroll := []domain.Role{domain.RoleAdmin, domain.RolePayrollManagement}

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Post("/register/admin", h.RegisterAdmin)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/departments", h.GetAllDepartments)
		r.Get("/departments/{id}", h.GetDepartment)
		r.Get("/positions", h.GetAllPositions)
		r.Get("/positions/{id}", h.GetPosition)

		r.Route("/employees", func(r chi.Router) {
			r.With(h.RequiredRole(readers)).Get("/", h.GetAllEmployees)
			r.With(h.RequiredRole(hr)).Post("/", h.CreateEmployee)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.employeeID)
				r.With(h.RequiredRole(readers)).Get("/", h.GetEmployee)
				r.With(h.RequiredRole(hr)).Put("/", h.UpdateEmployee)
				r.With(h.RequiredRole(hr)).Delete("/", h.DeleteEmployee)
			})
		})

		r.Route("/attendances", func(r chi.Router) {
			r.Use(h.RequiredRole(readers))
			r.Get("/", h.GetAllAttendances)
			r.Get("/{id}", h.GetAttendance)
			r.Get("/employee/{employeeID}", h.GetEmployeeAttendances)
			r.With(h.RequiredRole(hr)).Put("/", h.UpsertAttendance)
			r.With(h.RequiredRole(hr)).Put("/{id}", h.UpdateAttendance)
		})

		r.Route("/salaries", func(r chi.Router) {
			r.Use(h.RequiredRole(payroll))
			r.Get("/", h.GetAllSalaries)
			r.Post("/", h.CreateSalary)
			r.Get("/history/{employeeID}/{month}", h.GetSalaryHistory)
			r.Get("/notifications", h.GetNotifications)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(h.RequiredRole(readers))
			r.Get("/", h.GetNotifications)
			r.Post("/trigger/anniversary", h.TriggerAnniversary)
			r.Post("/trigger/absence/{employeeID}/{month}", h.TriggerAbsence)
		})

		r.With(h.RequiredRole(payroll)).Post("/email/send-salary-notifications", h.SendSalaryNotifications)
	})
}
