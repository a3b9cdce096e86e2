package occurrence

import (
	"time"

	"github.com/balanza/balanza/internal/utils"
	"github.com/balanza/balanza/pkg/entry"
)

// ApplyExceptions overlays a series' per-date exceptions onto its raw expansion
// dates. A skip exception removes the date entirely; an override substitutes
// title, description and amount. Entry type and dates are never overridden.
func ApplyExceptions(series entry.EntrySeries, dates []time.Time, exceptionsByDate map[string]entry.SeriesException) []Occurrence {
	occurrences := make([]Occurrence, 0, len(dates))
	for _, date := range dates {
		occurrence := Occurrence{
			ID:          ID(series.ID, date),
			SeriesID:    series.ID,
			EntryType:   series.EntryType,
			Title:       series.Title,
			Description: series.Description,
			Amount:      series.Amount,
			Date:        date,
		}

		if exception, ok := exceptionsByDate[utils.FormatDate(date)]; ok {
			if exception.Type == entry.ExceptionSkip {
				continue
			}
			occurrence.Title = exception.Title
			occurrence.Description = exception.Description
			occurrence.Amount = exception.Amount
		}

		occurrences = append(occurrences, occurrence)
	}
	return occurrences
}
