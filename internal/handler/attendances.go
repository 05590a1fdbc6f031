package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/integration-system/backend/internal/domain"
	"github.com/integration-system/backend/internal/utils"
)

func (h *Handler) GetAllAttendances(w http.ResponseWriter, r *http.Request) {
	records, err := h.Attendances.List(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取考勤列表成功", records)
}

func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.urlInt64(r, "id")
	if !ok {
		h.errorResponse(w, r, http.StatusBadRequest, "考勤ID无效")
		return
	}

	record, err := h.Attendances.GetByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAttendanceNotFound):
			h.notFound(w, r, "考勤记录不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取考勤记录成功", record)
}

func (h *Handler) GetEmployeeAttendances(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.urlInt64(r, "employeeID")
	if !ok {
		h.errorResponse(w, r, http.StatusBadRequest, "员工ID无效")
		return
	}

	records, err := h.Attendances.ListByEmployee(r.Context(), employeeID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取员工考勤成功", records)
}

func (h *Handler) UpsertAttendance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID      int64     `json:"employeeID" validate:"required,gt=0"`
		AttendanceMonth time.Time `json:"attendanceMonth" validate:"required"`
		WorkDays        int       `json:"workDays" validate:"gte=0,lte=31"`
		AbsentDays      int       `json:"absentDays" validate:"gte=0,lte=31"`
		LeaveDays       int       `json:"leaveDays" validate:"gte=0,lte=31"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	record := &domain.AttendanceRecord{
		EmployeeID:      req.EmployeeID,
		WorkDays:        req.WorkDays,
		AbsentDays:      req.AbsentDays,
		LeaveDays:       req.LeaveDays,
		AttendanceMonth: domain.MonthStart(req.AttendanceMonth),
	}
	if err := utils.ValidateAttendanceDays(record); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if _, err := h.Employees.Get(r.Context(), req.EmployeeID); err != nil {
		switch {
		case errors.Is(err, domain.ErrEmployeeNotFound):
			h.notFound(w, r, "员工不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	saved, err := h.Attendances.Upsert(r.Context(), record)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "保存考勤成功", saved)
}

// UpdateAttendance 按 ID 修改考勤天数，员工和月份沿用已有记录
func (h *Handler) UpdateAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.urlInt64(r, "id")
	if !ok {
		h.errorResponse(w, r, http.StatusBadRequest, "考勤ID无效")
		return
	}

	var req struct {
		WorkDays   int `json:"workDays" validate:"gte=0,lte=31"`
		AbsentDays int `json:"absentDays" validate:"gte=0,lte=31"`
		LeaveDays  int `json:"leaveDays" validate:"gte=0,lte=31"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	existing, err := h.Attendances.GetByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAttendanceNotFound):
			h.notFound(w, r, "考勤记录不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	record := &domain.AttendanceRecord{
		ID:              id,
		EmployeeID:      existing.EmployeeID,
		WorkDays:        req.WorkDays,
		AbsentDays:      req.AbsentDays,
		LeaveDays:       req.LeaveDays,
		AttendanceMonth: existing.AttendanceMonth,
	}
	if err := utils.ValidateAttendanceDays(record); err != nil {
		h.badRequest(w, r, err)
		return
	}

	saved, err := h.Attendances.Update(r.Context(), record)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAttendanceNotFound):
			h.notFound(w, r, "考勤记录不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新考勤成功", saved)
}
