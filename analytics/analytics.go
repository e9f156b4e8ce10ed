// Package analytics reports daily comment volume broken down by moderation
// state over a date range.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// DayCount is one row of the grouped count query: comments created on Date
// with the given blocked state.
type DayCount struct {
	Date    time.Time
	Blocked bool
	Count   int
}

type CommentStatsRepository interface {
	// CountCommentsByDay groups comments created in [from, to) by calendar
	// day and blocked state.
	CountCommentsByDay(ctx context.Context, from, to time.Time) (counts []DayCount, err error)
}

type DayBreakdown struct {
	Date time.Time

	// DayOfWeek is 1 for Sunday through 7 for Saturday.
	DayOfWeek    int
	Total        int
	TotalActive  int
	TotalBlocked int
}

type DailyCommentBreakdown struct {
	StartDate    time.Time
	EndDate      time.Time
	Total        int
	TotalActive  int
	TotalBlocked int
	Days         []DayBreakdown
}

type InvalidDateRangeError struct {
	Reason string
}

func (err InvalidDateRangeError) Error() string {
	return err.Reason
}

// ValidateDateRange rejects ranges reaching into the future and ranges that
// end before they start. Dates are compared at day precision against today.
func ValidateDateRange(startDate, endDate, today time.Time) error {
	today = truncateToDay(today)

	if truncateToDay(startDate).After(today) {
		return &InvalidDateRangeError{Reason: "start date cannot be in the future"}
	}

	if truncateToDay(endDate).After(today) {
		return &InvalidDateRangeError{Reason: "end date cannot be in the future"}
	}

	if endDate.Before(startDate) {
		return &InvalidDateRangeError{Reason: "end date cannot be before start date"}
	}

	return nil
}

type Service struct {
	statsRepo CommentStatsRepository
}

func NewService(statsRepo CommentStatsRepository) *Service {
	return &Service{statsRepo: statsRepo}
}

// DailyBreakdown aggregates comment counts per day between startDate and
// endDate inclusive. Days without comments are absent from the result.
func (svc *Service) DailyBreakdown(ctx context.Context, startDate, endDate time.Time) (*DailyCommentBreakdown, error) {
	err := ValidateDateRange(startDate, endDate, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	from := truncateToDay(startDate)
	to := truncateToDay(endDate).AddDate(0, 0, 1)

	counts, err := svc.statsRepo.CountCommentsByDay(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments by day: %w", err)
	}

	byDay := make(map[time.Time]*DayBreakdown)

	breakdown := &DailyCommentBreakdown{
		StartDate: truncateToDay(startDate),
		EndDate:   truncateToDay(endDate),
	}

	for _, count := range counts {
		day := truncateToDay(count.Date)

		row, ok := byDay[day]
		if !ok {
			row = &DayBreakdown{
				Date:      day,
				DayOfWeek: dayOfWeek(day),
			}
			byDay[day] = row
		}

		row.Total += count.Count
		breakdown.Total += count.Count

		if count.Blocked {
			row.TotalBlocked += count.Count
			breakdown.TotalBlocked += count.Count
		} else {
			row.TotalActive += count.Count
			breakdown.TotalActive += count.Count
		}
	}

	days := make([]DayBreakdown, 0, len(byDay))
	for _, row := range byDay {
		days = append(days, *row)
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})

	breakdown.Days = days

	return breakdown, nil
}

func truncateToDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// dayOfWeek maps Sunday to 1 and Saturday to 7.
func dayOfWeek(t time.Time) int {
	return int(t.Weekday()) + 1
}
