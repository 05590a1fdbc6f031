package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/integration-system/backend/internal/domain"
)

// SendSalaryNotifications 为指定月份有工资记录的在职员工投递工资单邮件
func (h *Handler) SendSalaryNotifications(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	period, err := parsePeriod(query.Get("month"), query.Get("year"), time.Now())
	if err != nil || query.Get("year") == "" {
		h.errorResponse(w, r, http.StatusBadRequest, "月份或年份无效")
		return
	}

	employees, err := h.Employees.List(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	salaries, err := h.Salaries.ListForPeriod(r.Context(), period.Year(), period.Month())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	byEmployee := make(map[int64]*domain.SalaryRecord, len(salaries))
	for _, s := range salaries {
		byEmployee[s.EmployeeID] = s
	}

	sent := 0
	failed := make([]string, 0)
	for _, e := range employees {
		if e.Email == "" {
			slog.Warn("员工没有邮箱，跳过", "employee_id", e.ID)
			continue
		}
		if strings.EqualFold(e.Status, domain.EmployeeStatusInactive) {
			slog.Info("员工已停用，跳过", "employee_id", e.ID)
			continue
		}

		salary, ok := byEmployee[e.ID]
		if !ok {
			slog.Warn("员工当月没有工资记录，跳过", "employee_id", e.ID, "year", period.Year(), "month", int(period.Month()))
			continue
		}

		if err := h.Mail.Publish(r.Context(), domain.MailMessage{
			Type: domain.MailTypePayslip,
			To:   e.Email,
			Data: domain.PayslipMailData{
				FullName:   e.FullName,
				Month:      int(period.Month()),
				Year:       period.Year(),
				BaseSalary: salary.BaseSalary,
				Bonus:      salary.Bonus,
				Deductions: salary.Deductions,
				NetSalary:  salary.NetSalary,
			},
		}); err != nil {
			slog.Error("投递工资单邮件失败", "employee_id", e.ID, slog.String("error", err.Error()))
			failed = append(failed, e.Email)
			continue
		}
		sent++
	}

	slog.Info("工资单邮件投递完成", "year", period.Year(), "month", int(period.Month()), "sent", sent, "failed", len(failed))

	h.successResponse(w, r, "工资单邮件投递完成", map[string]any{
		"sent":             sent,
		"failed":           len(failed),
		"failedRecipients": failed,
	})
}
