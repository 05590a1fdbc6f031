package domain

import "time"

type NotificationEntry struct {
	EmployeeID int64     `json:"employeeID"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}
