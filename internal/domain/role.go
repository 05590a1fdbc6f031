package domain

type Role string

const (
	RoleAdmin             Role = "Admin"
	RoleHR                Role = "HR"
	RolePayrollManagement Role = "PayrollManagement"
	RoleEmployee          Role = "Employee"
)

var AllRoles = []Role{RoleAdmin, RoleHR, RolePayrollManagement, RoleEmployee}

const (
	DepartmentHR      int64 = 1
	DepartmentPayroll int64 = 2
)

// RoleForDepartment 根据部门推导出员工唯一的角色，部门为空时视为普通员工
func RoleForDepartment(departmentID *int64) Role {
	if departmentID == nil {
		return RoleEmployee
	}

	switch *departmentID {
	case DepartmentHR:
		return RoleHR
	case DepartmentPayroll:
		return RolePayrollManagement
	default:
		return RoleEmployee
	}
}
