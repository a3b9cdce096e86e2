package occurrence

import (
	"testing"
	"time"

	"github.com/balanza/balanza/pkg/entry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyExceptions(t *testing.T) {
	series := weeklySeries("2026-01-05")
	dates := []time.Time{date("2026-01-05"), date("2026-01-12"), date("2026-01-19")}

	t.Run("should pass occurrences through unchanged without exceptions", func(t *testing.T) {
		occurrences := ApplyExceptions(series, dates, nil)

		require.Len(t, occurrences, 3)
		for i, occurrence := range occurrences {
			assert.Equal(t, series.Title, occurrence.Title)
			assert.True(t, series.Amount.Equal(occurrence.Amount))
			assert.Equal(t, dates[i], occurrence.Date)
			assert.Equal(t, ID(series.ID, dates[i]), occurrence.ID)
		}
	})

	t.Run("should remove exactly the skipped date", func(t *testing.T) {
		exceptions := map[string]entry.SeriesException{
			"2026-01-12": {SeriesID: series.ID, Date: date("2026-01-12"), Type: entry.ExceptionSkip},
		}

		occurrences := ApplyExceptions(series, dates, exceptions)

		require.Len(t, occurrences, 2)
		assert.Equal(t, date("2026-01-05"), occurrences[0].Date)
		assert.Equal(t, date("2026-01-19"), occurrences[1].Date)
	})

	t.Run("should substitute override fields on the overridden date only", func(t *testing.T) {
		exceptions := map[string]entry.SeriesException{
			"2026-01-12": {
				SeriesID:    series.ID,
				Date:        date("2026-01-12"),
				Type:        entry.ExceptionOverride,
				Title:       "Bigger shop",
				Description: "guests over",
				Amount:      decimal.NewFromInt(140),
			},
		}

		occurrences := ApplyExceptions(series, dates, exceptions)

		require.Len(t, occurrences, 3)
		assert.Equal(t, "Bigger shop", occurrences[1].Title)
		assert.Equal(t, "guests over", occurrences[1].Description)
		assert.True(t, decimal.NewFromInt(140).Equal(occurrences[1].Amount))
		// neighbours untouched
		assert.Equal(t, series.Title, occurrences[0].Title)
		assert.Equal(t, series.Title, occurrences[2].Title)
		// identity and type never change under an override
		assert.Equal(t, ID(series.ID, dates[1]), occurrences[1].ID)
		assert.Equal(t, series.EntryType, occurrences[1].EntryType)
	})

	t.Run("should keep the occurrence id stable across overlay", func(t *testing.T) {
		plain := ApplyExceptions(series, dates, nil)
		overridden := ApplyExceptions(series, dates, map[string]entry.SeriesException{
			"2026-01-05": {Type: entry.ExceptionOverride, Title: "x", Amount: decimal.NewFromInt(1)},
		})

		assert.Equal(t, plain[0].ID, overridden[0].ID)
	})
}
