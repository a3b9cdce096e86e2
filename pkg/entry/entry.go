package entry

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryType string

const (
	EntryTypeIncome  EntryType = "income"
	EntryTypeExpense EntryType = "expense"
)

type RecurrenceType string

const (
	RecurrenceOneTime RecurrenceType = "one_time"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
)

// EntrySeries is a recurring or one-time financial event template. Concrete
// dated occurrences are derived from it on demand, they are never stored.
type EntrySeries struct {
	ID             int64
	UserID         int
	EntryType      EntryType
	RecurrenceType RecurrenceType
	Title          string
	Description    string
	Amount         decimal.Decimal
	StartDate      time.Time
	// EndDate is nil for an unbounded series.
	EndDate *time.Time
	// Weekday is set iff RecurrenceType is weekly and always equals the weekday
	// of StartDate (0 = Sunday).
	Weekday *int
	// DayOfMonth is set iff RecurrenceType is monthly (1-31).
	DayOfMonth *int
	// ParentSeriesID links a series created by a future-scope split back to the
	// series it was split from. The chain is strictly forward in time.
	ParentSeriesID *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ActiveOn reports whether date falls within [StartDate, EndDate].
func (s EntrySeries) ActiveOn(date time.Time) bool {
	if date.Before(s.StartDate) {
		return false
	}
	if s.EndDate != nil && date.After(*s.EndDate) {
		return false
	}
	return true
}

type ExceptionType string

const (
	ExceptionOverride ExceptionType = "override"
	ExceptionSkip     ExceptionType = "skip"
)

// SeriesException is a per-date deviation from a series' generated occurrence.
// At most one exception exists per (series, date).
type SeriesException struct {
	ID       int64
	SeriesID int64
	UserID   int
	Date     time.Time
	Type     ExceptionType
	// Override values; zero for skip exceptions.
	Title       string
	Description string
	Amount      decimal.Decimal
	CreatedAt   time.Time
}

// Draft carries the mutable fields of a series for create and update commands.
type Draft struct {
	EntryType      EntryType
	RecurrenceType RecurrenceType
	Title          string
	Description    string
	Amount         decimal.Decimal
	StartDate      time.Time
	EndDate        *time.Time
	Weekday        *int
	DayOfMonth     *int
}
