package handler

import (
	"errors"
	"net/http"

	"github.com/integration-system/backend/internal/domain"
)

func (h *Handler) GetAllDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Lookups.GetAllDepartments(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取部门列表成功", departments)
}

func (h *Handler) GetAllPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.Lookups.GetAllPositions(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取职位列表成功", positions)
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.urlInt64(r, "id")
	if !ok {
		h.errorResponse(w, r, http.StatusBadRequest, "部门ID无效")
		return
	}

	department, err := h.Lookups.GetDepartment(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidDepartment):
			h.notFound(w, r, "部门不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取部门信息成功", department)
}

func (h *Handler) GetPosition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.urlInt64(r, "id")
	if !ok {
		h.errorResponse(w, r, http.StatusBadRequest, "职位ID无效")
		return
	}

	position, err := h.Lookups.GetPosition(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPosition):
			h.notFound(w, r, "职位不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取职位信息成功", position)
}
