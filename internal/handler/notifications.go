package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Notifier.All(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取通知成功", entries)
}

func (h *Handler) TriggerAnniversary(w http.ResponseWriter, r *http.Request) {
	count, err := h.Notifier.CheckAnniversaries(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "已检查入职周年", map[string]int{"count": count})
}

func (h *Handler) TriggerAbsence(w http.ResponseWriter, r *http.Request) {
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

	raised, err := h.Notifier.CheckAbsence(r.Context(), employeeID, month)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "已检查缺勤", map[string]bool{"raised": raised})
}
