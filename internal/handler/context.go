package handler

type ContextKey string

var (
	RolesCtxKey   ContextKey = "roles"
	SubCtxKey     ContextKey = "sub"
	EmployeeIDCtx ContextKey = "employeeID"
)
