package entry

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	maxTitleLength       = 120
	maxDescriptionLength = 500
)

// validateDraft checks all invariants of a series definition before any
// mutation: field lengths, amount precision, recurrence field consistency and
// date bounds. It returns a ValidationError describing the first violation.
func validateDraft(d Draft) error {
	if d.EntryType != EntryTypeIncome && d.EntryType != EntryTypeExpense {
		return ValidationError{Field: "entry_type", Reason: "must be income or expense"}
	}
	if d.RecurrenceType != RecurrenceOneTime && d.RecurrenceType != RecurrenceWeekly && d.RecurrenceType != RecurrenceMonthly {
		return ValidationError{Field: "recurrence_type", Reason: "must be one_time, weekly or monthly"}
	}
	if err := validateOverrideFields(d.Title, d.Description, d.Amount); err != nil {
		return err
	}
	if d.StartDate.IsZero() {
		return ValidationError{Field: "start_date", Reason: "is required"}
	}
	if d.EndDate != nil && d.EndDate.Before(d.StartDate) {
		return ValidationError{Field: "end_date", Reason: "must not be before start_date"}
	}

	switch d.RecurrenceType {
	case RecurrenceOneTime:
		if d.Weekday != nil || d.DayOfMonth != nil {
			return ValidationError{Field: "recurrence_type", Reason: "one_time entries must not set weekday or day_of_month"}
		}
	case RecurrenceWeekly:
		if d.DayOfMonth != nil {
			return ValidationError{Field: "day_of_month", Reason: "must not be set for weekly entries"}
		}
		if d.Weekday == nil {
			return ValidationError{Field: "weekday", Reason: "is required for weekly entries"}
		}
		if *d.Weekday < 0 || *d.Weekday > 6 {
			return ValidationError{Field: "weekday", Reason: "must be between 0 (Sunday) and 6 (Saturday)"}
		}
		if *d.Weekday != int(d.StartDate.Weekday()) {
			return ValidationError{
				Field:  "weekday",
				Reason: fmt.Sprintf("must match the weekday of start_date (%d)", int(d.StartDate.Weekday())),
			}
		}
	case RecurrenceMonthly:
		if d.Weekday != nil {
			return ValidationError{Field: "weekday", Reason: "must not be set for monthly entries"}
		}
		if d.DayOfMonth == nil {
			return ValidationError{Field: "day_of_month", Reason: "is required for monthly entries"}
		}
		if *d.DayOfMonth < 1 || *d.DayOfMonth > 31 {
			return ValidationError{Field: "day_of_month", Reason: "must be between 1 and 31"}
		}
	}

	return nil
}

// validateOverrideFields checks the payload shared by series drafts and
// occurrence-scope overrides: title, description and amount.
func validateOverrideFields(title, description string, amount decimal.Decimal) error {
	if len(title) == 0 {
		return ValidationError{Field: "title", Reason: "is required"}
	}
	if len(title) > maxTitleLength {
		return ValidationError{Field: "title", Reason: fmt.Sprintf("must be at most %d characters", maxTitleLength)}
	}
	if len(description) > maxDescriptionLength {
		return ValidationError{Field: "description", Reason: fmt.Sprintf("must be at most %d characters", maxDescriptionLength)}
	}
	if !amount.IsPositive() {
		return ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if !amount.Equal(amount.Round(2)) {
		return ValidationError{Field: "amount", Reason: "must have at most 2 fractional digits"}
	}
	return nil
}
