package domain

import "time"

const (
	EmployeeStatusWorking  = "working"
	EmployeeStatusInactive = "Inactive"
)

type Employee struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"fullName"`
	DateOfBirth  time.Time `json:"dateOfBirth"`
	Gender       *bool     `json:"gender"`
	PhoneNumber  string    `json:"phoneNumber"`
	Email        string    `json:"email"`
	HireDate     time.Time `json:"hireDate"`
	DepartmentID *int64    `json:"departmentID"`
	PositionID   *int64    `json:"positionID"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// MirrorEmployee 是副库中保存的员工精简副本，ID 与主库一致
type MirrorEmployee struct {
	ID           int64  `json:"id"`
	FullName     string `json:"fullName"`
	DepartmentID *int64 `json:"departmentID"`
	PositionID   *int64 `json:"positionID"`
	Status       string `json:"status"`
}

func (e *Employee) Mirror() *MirrorEmployee {
	return &MirrorEmployee{
		ID:           e.ID,
		FullName:     e.FullName,
		DepartmentID: e.DepartmentID,
		PositionID:   e.PositionID,
		Status:       e.Status,
	}
}

type Department struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Position struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
