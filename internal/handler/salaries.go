package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/integration-system/backend/internal/domain"
)

func (h *Handler) GetAllSalaries(w http.ResponseWriter, r *http.Request) {
	salaries, err := h.Salaries.List(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取工资列表成功", salaries)
}

func (h *Handler) CreateSalary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID  int64     `json:"employeeID" validate:"required,gt=0"`
		SalaryMonth time.Time `json:"salaryMonth" validate:"required"`
		BaseSalary  float64   `json:"baseSalary" validate:"gte=0"`
		Bonus       *float64  `json:"bonus" validate:"omitempty,gte=0"`
		Deductions  *float64  `json:"deductions" validate:"omitempty,gte=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	in := domain.SalaryInput{
		EmployeeID:  req.EmployeeID,
		SalaryMonth: domain.MonthStart(req.SalaryMonth),
		BaseSalary:  req.BaseSalary,
		Bonus:       req.Bonus,
		Deductions:  req.Deductions,
	}

	if _, err := h.Employees.Get(r.Context(), in.EmployeeID); err != nil {
		switch {
		case errors.Is(err, domain.ErrEmployeeNotFound):
			h.notFound(w, r, "员工不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	exists, err := h.Salaries.Exists(r.Context(), in.EmployeeID, in.SalaryMonth)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if exists {
		h.conflict(w, r, "该员工当月工资已存在")
		return
	}

	// 通知只是提醒，记录失败不阻止工资录入
	deviation, err := h.Notifier.CheckSalaryDeviation(r.Context(), in)
	if err != nil {
		slog.Error("检查工资偏差失败", "employee_id", in.EmployeeID, slog.String("error", err.Error()))
	}
	if deviation && h.config.Notification.RejectOnDeviation {
		h.errorResponse(w, r, http.StatusUnprocessableEntity, "实发工资与最近一次记录差距过大")
		return
	}

	record, err := h.Salaries.Insert(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSalaryExists):
			h.conflict(w, r, "该员工当月工资已存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.createdResponse(w, r, "录入工资成功", map[string]any{
		"salary":    record,
		"deviation": deviation,
	})
}

func (h *Handler) GetSalaryHistory(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.urlInt64(r, "employeeID")
	if !ok {
		h.errorResponse(w, r, http.StatusBadRequest, "员工ID无效")
		return
	}

	month, err := parsePeriod(chi.URLParam(r, "month"), r.URL.Query().Get("year"), time.Now())
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "月份或年份无效")
		return
	}

	record, err := h.Salaries.History(r.Context(), employeeID, month)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSalaryNotFound):
			h.notFound(w, r, "工资记录不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取工资记录成功", record)
}
