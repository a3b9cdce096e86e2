package occurrence

import (
	"time"

	"github.com/balanza/balanza/internal/utils"
	"github.com/balanza/balanza/pkg/entry"
)

// Expand produces the strictly increasing dates a series is active on within
// [from, to]. The series' own [start_date, end_date] range is intersected with
// the window first, so a series entirely outside the window yields nothing.
func Expand(series entry.EntrySeries, from, to time.Time) []time.Time {
	effectiveFrom := from
	if series.StartDate.After(effectiveFrom) {
		effectiveFrom = series.StartDate
	}
	effectiveTo := to
	if series.EndDate != nil && series.EndDate.Before(effectiveTo) {
		effectiveTo = *series.EndDate
	}
	if effectiveFrom.After(effectiveTo) {
		return nil
	}

	switch series.RecurrenceType {
	case entry.RecurrenceOneTime:
		if !series.StartDate.Before(effectiveFrom) && !series.StartDate.After(effectiveTo) {
			return []time.Time{series.StartDate}
		}
		return nil
	case entry.RecurrenceWeekly:
		return expandWeekly(series.StartDate, effectiveFrom, effectiveTo)
	case entry.RecurrenceMonthly:
		if series.DayOfMonth == nil {
			return nil
		}
		return expandMonthly(*series.DayOfMonth, effectiveFrom, effectiveTo)
	}
	return nil
}

// expandWeekly emits startDate + 7k days for every k that lands inside the
// effective window. The stored weekday is trusted to match startDate's weekday,
// it is enforced at creation time and never re-derived here.
func expandWeekly(startDate, from, to time.Time) []time.Time {
	days := utils.DaysBetween(startDate, from)
	weeks := days / 7
	if days%7 != 0 {
		weeks++
	}

	var dates []time.Time
	for date := startDate.AddDate(0, 0, 7*weeks); !date.After(to); date = date.AddDate(0, 0, 7) {
		dates = append(dates, date)
	}
	return dates
}

// expandMonthly emits the dayOfMonth date of every month intersecting the
// window. Months shorter than dayOfMonth are skipped entirely rather than
// clamped, so an amount never silently moves to a different date.
func expandMonthly(dayOfMonth int, from, to time.Time) []time.Time {
	fromYear, fromMonth, _ := from.Date()
	toYear, toMonth, _ := to.Date()

	firstMonth := fromYear*12 + int(fromMonth) - 1
	lastMonth := toYear*12 + int(toMonth) - 1

	var dates []time.Time
	for month := firstMonth; month <= lastMonth; month++ {
		year := month / 12
		monthOfYear := time.Month(month%12 + 1)
		if dayOfMonth > utils.DaysInMonth(year, monthOfYear) {
			continue
		}
		date := time.Date(year, monthOfYear, dayOfMonth, 0, 0, 0, 0, time.UTC)
		if !date.Before(from) && !date.After(to) {
			dates = append(dates, date)
		}
	}
	return dates
}
