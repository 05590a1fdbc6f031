package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

var errInvalidPeriod = errors.New("invalid month or year")

// parsePeriod 将月份和可选年份解析为该月第一天，年份为空时使用 now 所在年份
func parsePeriod(monthStr, yearStr string, now time.Time) (time.Time, error) {
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, errInvalidPeriod
	}

	year := now.Year()
	if yearStr != "" {
		year, err = strconv.Atoi(yearStr)
		if err != nil || year <= 0 {
			return time.Time{}, errInvalidPeriod
		}
	}

	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

func (h *Handler) urlInt64(r *http.Request, key string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
