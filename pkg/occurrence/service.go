package occurrence

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/balanza/balanza/internal/event_bus"
	"github.com/balanza/balanza/internal/utils"
	"github.com/balanza/balanza/pkg/entry"
	"github.com/balanza/balanza/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
	// MaxWindowYears bounds the size of a single expansion window.
	MaxWindowYears = 10
)

type Query struct {
	From      time.Time
	To        time.Time
	EntryType *entry.EntryType
	Limit     int
	Offset    int
}

// Page is one window of the merged occurrence sequence plus the total count
// before pagination.
type Page struct {
	Occurrences []Occurrence
	Total       int
}

// Totals is the signed sum of all occurrences in a window, split by entry type.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

type Service interface {
	Query(ctx context.Context, q Query) (Page, error)
	Totals(ctx context.Context, from, to time.Time) (Totals, error)
}

// ServiceImpl expands every series of the current user within a window and
// overlays exceptions. Reads are pure functions of persisted state.
type ServiceImpl struct {
	entries entry.Repo
	bus     *event_bus.EventBus
}

func NewService(entries entry.Repo, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{entries: entries, bus: bus}
}

func (s *ServiceImpl) Query(ctx context.Context, q Query) (Page, error) {
	if err := validateWindow(q.From, q.To); err != nil {
		return Page{}, err
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit < 0 || q.Limit > MaxLimit {
		return Page{}, entry.ValidationError{Field: "limit", Reason: fmt.Sprintf("must be between 1 and %d", MaxLimit)}
	}
	if q.Offset < 0 {
		return Page{}, entry.ValidationError{Field: "offset", Reason: "must not be negative"}
	}

	occurrences, err := s.collect(ctx, q.From, q.To)
	if err != nil {
		return Page{}, err
	}

	if q.EntryType != nil {
		filtered := make([]Occurrence, 0, len(occurrences))
		for _, occurrence := range occurrences {
			if occurrence.EntryType == *q.EntryType {
				filtered = append(filtered, occurrence)
			}
		}
		occurrences = filtered
	}

	total := len(occurrences)
	if q.Offset >= total {
		occurrences = nil
	} else {
		end := q.Offset + q.Limit
		if end > total {
			end = total
		}
		occurrences = occurrences[q.Offset:end]
	}

	if s.bus != nil {
		s.bus.Publish(event_bus.NewEvent(ctx, event_bus.OccurrencesExpanded, event_bus.OccurrenceQuery{
			From:    q.From,
			To:      q.To,
			Results: total,
		}))
	}
	return Page{Occurrences: occurrences, Total: total}, nil
}

// Totals computes the signed income/expense sums over [from, to]. It is the
// aggregation the projection calculator delegates to.
func (s *ServiceImpl) Totals(ctx context.Context, from, to time.Time) (Totals, error) {
	occurrences, err := s.collect(ctx, from, to)
	if err != nil {
		return Totals{}, err
	}

	totals := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, occurrence := range occurrences {
		if occurrence.EntryType == entry.EntryTypeIncome {
			totals.Income = totals.Income.Add(occurrence.Amount)
		} else {
			totals.Expense = totals.Expense.Add(occurrence.Amount)
		}
	}
	return totals, nil
}

// collect expands and overlays all series of the current user, merged and
// ordered by (date, series id).
func (s *ServiceImpl) collect(ctx context.Context, from, to time.Time) ([]Occurrence, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	allSeries, err := s.entries.GetAllSeries(ctx, userId)
	if err != nil {
		return nil, err
	}
	exceptions, err := s.entries.GetExceptionsIn(ctx, userId, from, to)
	if err != nil {
		return nil, err
	}
	log.Tracef("expanding %d series with %d exceptions between %s and %s",
		len(allSeries), len(exceptions), utils.FormatDate(from), utils.FormatDate(to))

	exceptionsBySeries := make(map[int64]map[string]entry.SeriesException)
	for _, exception := range exceptions {
		if exceptionsBySeries[exception.SeriesID] == nil {
			exceptionsBySeries[exception.SeriesID] = make(map[string]entry.SeriesException)
		}
		exceptionsBySeries[exception.SeriesID][utils.FormatDate(exception.Date)] = exception
	}

	var occurrences []Occurrence
	for _, series := range allSeries {
		dates := Expand(series, from, to)
		occurrences = append(occurrences, ApplyExceptions(series, dates, exceptionsBySeries[series.ID])...)
	}

	sort.Slice(occurrences, func(i, j int) bool {
		if !occurrences[i].Date.Equal(occurrences[j].Date) {
			return occurrences[i].Date.Before(occurrences[j].Date)
		}
		return occurrences[i].SeriesID < occurrences[j].SeriesID
	})
	return occurrences, nil
}

func validateWindow(from, to time.Time) error {
	if from.IsZero() {
		return entry.ValidationError{Field: "from_date", Reason: "is required"}
	}
	if to.IsZero() {
		return entry.ValidationError{Field: "to_date", Reason: "is required"}
	}
	if to.Before(from) {
		return entry.ValidationError{Field: "to_date", Reason: "must not be before from_date"}
	}
	if to.After(from.AddDate(MaxWindowYears, 0, 0)) {
		return entry.ValidationError{Field: "to_date", Reason: fmt.Sprintf("window must not exceed %d years", MaxWindowYears)}
	}
	return nil
}
