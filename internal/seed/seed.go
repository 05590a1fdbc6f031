package seed

import (
	"context"
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/integration-system/backend/internal/domain"
	"github.com/integration-system/backend/internal/employee"
	"github.com/integration-system/backend/internal/utils"
)

//go:embed data/lookups.csv
var dataFS embed.FS

type LookupWriter interface {
	UpsertDepartment(ctx context.Context, d *domain.Department) error
	UpsertPosition(ctx context.Context, p *domain.Position) error
}

type EmployeeWriter interface {
	Insert(ctx context.Context, in employee.Input) (*employee.InsertResult, error)
	List(ctx context.Context) ([]*domain.Employee, error)
}

type AttendanceWriter interface {
	Upsert(ctx context.Context, record *domain.AttendanceRecord) (*domain.AttendanceRecord, error)
}

type Lookups struct {
	Departments []*domain.Department
	Positions   []*domain.Position
}

func (l *Lookups) DepartmentIDs() []int64 {
	ids := make([]int64, 0, len(l.Departments))
	for _, d := range l.Departments {
		ids = append(ids, d.ID)
	}
	return ids
}

func (l *Lookups) PositionIDs() []int64 {
	ids := make([]int64, 0, len(l.Positions))
	for _, p := range l.Positions {
		ids = append(ids, p.ID)
	}
	return ids
}

// ParseLookups 读取 kind,id,name 格式的 CSV，第一行为表头
func ParseLookups(r io.Reader) (*Lookups, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	lookups := &Lookups{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		id, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", record[1])
		}
		name := strings.TrimSpace(record[2])
		if name == "" {
			return nil, fmt.Errorf("empty name for id %d", id)
		}

		switch strings.TrimSpace(record[0]) {
		case "department":
			lookups.Departments = append(lookups.Departments, &domain.Department{ID: id, Name: name})
		case "position":
			lookups.Positions = append(lookups.Positions, &domain.Position{ID: id, Name: name})
		default:
			return nil, fmt.Errorf("unknown kind %q", record[0])
		}
	}

	return lookups, nil
}

func DefaultLookups() (*Lookups, error) {
	file, err := dataFS.Open("data/lookups.csv")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseLookups(file)
}

type Seeder struct {
	lookups     LookupWriter
	employees   EmployeeWriter
	attendances AttendanceWriter
}

func NewSeeder(lookups LookupWriter, employees EmployeeWriter, attendances AttendanceWriter) *Seeder {
	return &Seeder{
		lookups:     lookups,
		employees:   employees,
		attendances: attendances,
	}
}

// SeedLookups 写入部门和职位，部门 1、2 分别对应人事和薪资角色
func (s *Seeder) SeedLookups(ctx context.Context, l *Lookups) error {
	for _, d := range l.Departments {
		if err := s.lookups.UpsertDepartment(ctx, d); err != nil {
			return fmt.Errorf("upsert department %d: %w", d.ID, err)
		}
	}
	for _, p := range l.Positions {
		if err := s.lookups.UpsertPosition(ctx, p); err != nil {
			return fmt.Errorf("upsert position %d: %w", p.ID, err)
		}
	}

	slog.Info("已写入部门和职位", "departments", len(l.Departments), "positions", len(l.Positions))
	return nil
}

func inputFrom(e *domain.Employee) employee.Input {
	return employee.Input{
		FullName:     e.FullName,
		DateOfBirth:  e.DateOfBirth,
		Gender:       e.Gender,
		PhoneNumber:  e.PhoneNumber,
		Email:        e.Email,
		HireDate:     e.HireDate,
		DepartmentID: e.DepartmentID,
		PositionID:   e.PositionID,
		Status:       e.Status,
	}
}

// SeedEmployees 通过员工存储插入 n 个随机员工，返回成功数量
func (s *Seeder) SeedEmployees(ctx context.Context, l *Lookups, emailDomain string, n int) int {
	created := 0
	for i := 0; i < n; i++ {
		e := utils.GenerateRandomEmployee(emailDomain, l.DepartmentIDs(), l.PositionIDs())

		result, err := s.employees.Insert(ctx, inputFrom(e))
		if err != nil {
			slog.Error("无法插入员工", "email", e.Email, slog.String("error", err.Error()))
			continue
		}

		slog.Info("已插入员工", "employee_id", result.Employee.ID, "username", result.Username)
		created++
	}

	return created
}

// SeedAttendance 为所有员工生成指定月份的随机考勤，返回成功数量
func (s *Seeder) SeedAttendance(ctx context.Context, month time.Time) (int, error) {
	employees, err := s.employees.List(ctx)
	if err != nil {
		return 0, err
	}

	saved := 0
	for _, e := range employees {
		if _, err := s.attendances.Upsert(ctx, utils.GenerateRandomAttendance(e.ID, month)); err != nil {
			slog.Error("无法写入考勤", "employee_id", e.ID, slog.String("error", err.Error()))
			continue
		}
		saved++
	}

	return saved, nil
}
