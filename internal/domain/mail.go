package domain

const (
	MailTypeNewAccount = "new_account"
	MailTypePayslip    = "payslip"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type NewAccountMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type PayslipMailData struct {
	FullName   string  `json:"fullName"`
	Month      int     `json:"month"`
	Year       int     `json:"year"`
	BaseSalary float64 `json:"baseSalary"`
	Bonus      float64 `json:"bonus"`
	Deductions float64 `json:"deductions"`
	NetSalary  float64 `json:"netSalary"`
}
