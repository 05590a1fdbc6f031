package domain

type ValidationOutcome string

const (
	ValidationSuccess            ValidationOutcome = "Success"
	ValidationEmailAlreadyExists ValidationOutcome = "EmailAlreadyExists"
	ValidationInvalidDepartment  ValidationOutcome = "InvalidDepartment"
	ValidationInvalidPosition    ValidationOutcome = "InvalidPosition"
	ValidationFailed             ValidationOutcome = "ValidationFailed"
)
