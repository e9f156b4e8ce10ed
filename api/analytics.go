package api

import (
	"net/http"
	"time"

	"github.com/HCodeKeeper/ai-moderated-blog/analytics"
)

type dayBreakdownResponse struct {
	Date         string `json:"date"`
	DayOfWeek    int    `json:"dayOfWeek"`
	Total        int    `json:"total"`
	TotalActive  int    `json:"totalActive"`
	TotalBlocked int    `json:"totalBlocked"`
}

type dailyBreakdownResponse struct {
	StartDate    string                 `json:"startDate"`
	EndDate      string                 `json:"endDate"`
	Total        int                    `json:"total"`
	TotalActive  int                    `json:"totalActive"`
	TotalBlocked int                    `json:"totalBlocked"`
	Days         []dayBreakdownResponse `json:"days"`
}

func toDailyBreakdownResponse(breakdown *analytics.DailyCommentBreakdown) dailyBreakdownResponse {
	days := make([]dayBreakdownResponse, 0, len(breakdown.Days))
	for _, day := range breakdown.Days {
		days = append(days, dayBreakdownResponse{
			Date:         day.Date.Format(time.DateOnly),
			DayOfWeek:    day.DayOfWeek,
			Total:        day.Total,
			TotalActive:  day.TotalActive,
			TotalBlocked: day.TotalBlocked,
		})
	}

	return dailyBreakdownResponse{
		StartDate:    breakdown.StartDate.Format(time.DateOnly),
		EndDate:      breakdown.EndDate.Format(time.DateOnly),
		Total:        breakdown.Total,
		TotalActive:  breakdown.TotalActive,
		TotalBlocked: breakdown.TotalBlocked,
		Days:         days,
	}
}

func (h *Handler) HandleDailyCommentBreakdown() http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startDate, err := time.ParseInLocation(time.DateOnly, r.URL.Query().Get("start_date"), time.UTC)
		if err != nil {
			h.writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{Error: "start_date must be YYYY-MM-DD"})

			return
		}

		endDate, err := time.ParseInLocation(time.DateOnly, r.URL.Query().Get("end_date"), time.UTC)
		if err != nil {
			h.writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{Error: "end_date must be YYYY-MM-DD"})

			return
		}

		breakdown, err := h.analyticsSvc.DailyBreakdown(r.Context(), startDate, endDate)
		if err != nil {
			h.writeDomainError(w, r, err, "")

			return
		}

		h.writeJSON(w, r, http.StatusOK, toDailyBreakdownResponse(breakdown))
	})

	return h.AdminOnly(hf)
}
