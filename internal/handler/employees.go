package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/integration-system/backend/internal/domain"
	"github.com/integration-system/backend/internal/employee"
	"github.com/integration-system/backend/internal/utils"
)

func (h *Handler) checkDates(w http.ResponseWriter, r *http.Request, in employee.Input) bool {
	if in.DateOfBirth.IsZero() || in.HireDate.IsZero() {
		return true
	}
	if err := utils.ValidateEmployeeDates(in.DateOfBirth, in.HireDate, time.Now()); err != nil {
		h.badRequest(w, r, err)
		return false
	}
	return true
}

// validationFailed 把校验结果翻译为响应，返回 true 表示已经写入了错误响应
func (h *Handler) validationFailed(w http.ResponseWriter, r *http.Request, outcome domain.ValidationOutcome, err error) bool {
	switch outcome {
	case domain.ValidationSuccess:
		return false
	case domain.ValidationFailed:
		h.badRequest(w, r, err)
	case domain.ValidationEmailAlreadyExists:
		h.conflict(w, r, "邮箱已存在")
	case domain.ValidationInvalidDepartment:
		h.errorResponse(w, r, http.StatusBadRequest, "部门不存在")
	case domain.ValidationInvalidPosition:
		h.errorResponse(w, r, http.StatusBadRequest, "职位不存在")
	default:
		h.internalServerError(w, r, err)
	}
	return true
}

// writeConflict 处理校验之后并发写入造成的冲突，返回 true 表示已经写入了错误响应
func (h *Handler) writeConflict(w http.ResponseWriter, r *http.Request, err error) bool {
	var identityErr *domain.IdentityError
	switch {
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		h.conflict(w, r, "邮箱已存在")
	case errors.As(err, &identityErr) && identityErr.HasCode(domain.IdentityCodeDuplicateEmail):
		h.conflict(w, r, "邮箱已存在")
	case errors.As(err, &identityErr) && identityErr.HasCode(domain.IdentityCodeDuplicateUserName):
		h.conflict(w, r, "用户名已存在")
	default:
		return false
	}
	return true
}

func (h *Handler) GetAllEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Employees.List(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取员工列表成功", employees)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := r.Context().Value(EmployeeIDCtx).(int64)

	e, err := h.Employees.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmployeeNotFound):
			h.notFound(w, r, "员工不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取员工信息成功", e)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req employee.Input
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if !h.checkDates(w, r, req) {
		return
	}

	outcome, err := h.Employees.Validate(r.Context(), req)
	if outcome == "" && err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if h.validationFailed(w, r, outcome, err) {
		return
	}

	result, err := h.Employees.Insert(r.Context(), req)
	if err != nil {
		if !h.writeConflict(w, r, err) {
			h.internalServerError(w, r, err)
		}
		return
	}

	// 员工已经创建成功，欢迎邮件发送失败不影响响应
	if err := h.Mail.Publish(r.Context(), domain.MailMessage{
		Type: domain.MailTypeNewAccount,
		To:   result.Employee.Email,
		Data: domain.NewAccountMailData{
			FullName: result.Employee.FullName,
			Username: result.Username,
			Password: result.Password,
		},
	}); err != nil {
		slog.Error("投递新账号邮件失败", "employee_id", result.Employee.ID, slog.String("error", err.Error()))
	}

	h.createdResponse(w, r, "创建员工成功", map[string]any{
		"employee": result.Employee,
		"username": result.Username,
	})
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := r.Context().Value(EmployeeIDCtx).(int64)

	var req employee.Input
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if !h.checkDates(w, r, req) {
		return
	}

	outcome, err := h.Employees.ValidateUpdate(r.Context(), id, req)
	if outcome == "" && err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if h.validationFailed(w, r, outcome, err) {
		return
	}

	if err := h.Employees.Update(r.Context(), id, req); err != nil {
		switch {
		case errors.Is(err, domain.ErrEmployeeNotFound):
			h.notFound(w, r, "员工不存在")
		case h.writeConflict(w, r, err):
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新员工成功", nil)
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := r.Context().Value(EmployeeIDCtx).(int64)

	if err := h.Employees.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, domain.ErrEmployeeNotFound):
			h.notFound(w, r, "员工不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if _, err := h.Notifier.NotifyDeletion(r.Context(), id, true); err != nil {
		slog.Error("记录员工删除通知失败", "employee_id", id, slog.String("error", err.Error()))
	}

	h.successResponse(w, r, "删除员工成功", nil)
}
