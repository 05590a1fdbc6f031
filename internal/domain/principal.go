package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Principal 是登录身份。员工的身份以员工 ID 的十进制字符串为键，管理员使用 uuid
type Principal struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	SecurityStamp string    `json:"-"`
	Roles         []Role    `json:"roles"`
	CreatedAt     time.Time `json:"createdAt"`
}

func EmployeePrincipalID(employeeID int64) string {
	return strconv.FormatInt(employeeID, 10)
}

func (p *Principal) HasOnlyRole(role Role) bool {
	return len(p.Roles) == 1 && p.Roles[0] == role
}

const (
	IdentityCodeDuplicateEmail    = "DuplicateEmail"
	IdentityCodeDuplicateUserName = "DuplicateUserName"
	IdentityCodeDuplicateID       = "DuplicateId"
	IdentityCodeRoleNotFound      = "RoleNotFound"
	IdentityCodeUserNotFound      = "UserNotFound"
	IdentityCodeInvalidPassword   = "InvalidPassword"
)

type IdentityErrorDetail struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// IdentityError 携带身份系统返回的结构化错误码
type IdentityError struct {
	Op     string
	Errors []IdentityErrorDetail
}

func NewIdentityError(op, code, description string) *IdentityError {
	return &IdentityError{
		Op:     op,
		Errors: []IdentityErrorDetail{{Code: code, Description: description}},
	}
}

func (e *IdentityError) Error() string {
	details := make([]string, 0, len(e.Errors))
	for _, d := range e.Errors {
		details = append(details, fmt.Sprintf("%s: %s", d.Code, d.Description))
	}
	return fmt.Sprintf("identity %s failed: %s", e.Op, strings.Join(details, ", "))
}

func (e *IdentityError) HasCode(code string) bool {
	for _, d := range e.Errors {
		if d.Code == code {
			return true
		}
	}
	return false
}
