package entry

import (
	"context"
	"testing"
	"time"

	"github.com/balanza/balanza/internal/utils"
	"github.com/balanza/balanza/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Id: 1, Uid: "u-1", DisplayName: "Test User"})

func date(value string) time.Time {
	d, err := utils.ParseDate(value)
	if err != nil {
		panic(err)
	}
	return d
}

func datePtr(value string) *time.Time {
	d := date(value)
	return &d
}

func intPtr(value int) *int {
	return &value
}

func monthlyDraft() Draft {
	return Draft{
		EntryType:      EntryTypeExpense,
		RecurrenceType: RecurrenceMonthly,
		Title:          "Rent",
		Amount:         decimal.NewFromInt(1200),
		StartDate:      date("2026-01-01"),
		DayOfMonth:     intPtr(1),
	}
}

func setup(t *testing.T) (*RepoStub, Service) {
	repo := NewRepoStub()
	return repo, NewService(repo, nil)
}

func TestServiceImpl_Create(t *testing.T) {
	t.Run("should create a valid monthly series", func(t *testing.T) {
		_, service := setup(t)

		series, err := service.Create(ctx, monthlyDraft())

		require.NoError(t, err)
		assert.NotZero(t, series.ID)
		assert.Equal(t, RecurrenceMonthly, series.RecurrenceType)
		assert.Nil(t, series.ParentSeriesID)
	})

	t.Run("should reject an amount with more than two fractional digits", func(t *testing.T) {
		_, service := setup(t)
		draft := monthlyDraft()
		draft.Amount = decimal.RequireFromString("10.005")

		_, err := service.Create(ctx, draft)

		var validationErr ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "amount", validationErr.Field)
	})

	t.Run("should reject a weekly series whose weekday does not match start_date", func(t *testing.T) {
		_, service := setup(t)
		draft := Draft{
			EntryType:      EntryTypeExpense,
			RecurrenceType: RecurrenceWeekly,
			Title:          "Groceries",
			Amount:         decimal.NewFromInt(80),
			StartDate:      date("2026-01-05"), // a Monday
			Weekday:        intPtr(3),
		}

		_, err := service.Create(ctx, draft)

		var validationErr ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "weekday", validationErr.Field)
	})

	t.Run("should reject an end_date before start_date", func(t *testing.T) {
		_, service := setup(t)
		draft := monthlyDraft()
		draft.EndDate = datePtr("2025-12-01")

		_, err := service.Create(ctx, draft)

		var validationErr ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "end_date", validationErr.Field)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		_, service := setup(t)

		_, err := service.Create(context.Background(), monthlyDraft())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get current user")
	})
}

func TestServiceImpl_Update_Occurrence(t *testing.T) {
	t.Run("should record an override exception without touching the series", func(t *testing.T) {
		repo, service := setup(t)
		series, err := service.Create(ctx, monthlyDraft())
		require.NoError(t, err)

		draft := monthlyDraft()
		draft.Title = "Rent (increased)"
		draft.Amount = decimal.NewFromInt(1350)
		target := date("2026-03-01")

		result, err := service.Update(ctx, series.ID, ScopeOccurrence, &target, draft)

		require.NoError(t, err)
		require.NotNil(t, result.Exception)
		assert.Equal(t, ExceptionOverride, result.Exception.Type)
		assert.Equal(t, "Rent (increased)", result.Exception.Title)
		assert.True(t, decimal.NewFromInt(1350).Equal(result.Exception.Amount))
		assert.Equal(t, target, result.Exception.Date)

		unchanged, err := repo.GetSeries(ctx, 1, series.ID)
		require.NoError(t, err)
		assert.Equal(t, "Rent", unchanged.Title)
		assert.Nil(t, unchanged.EndDate)
	})

	t.Run("should replace a previous override on the same date", func(t *testing.T) {
		repo, service := setup(t)
		series, err := service.Create(ctx, monthlyDraft())
		require.NoError(t, err)
		target := date("2026-03-01")

		first := monthlyDraft()
		first.Amount = decimal.NewFromInt(1300)
		_, err = service.Update(ctx, series.ID, ScopeOccurrence, &target, first)
		require.NoError(t, err)

		second := monthlyDraft()
		second.Amount = decimal.NewFromInt(1400)
		result, err := service.Update(ctx, series.ID, ScopeOccurrence, &target, second)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(1400).Equal(result.Exception.Amount))

		exceptions, err := repo.GetExceptions(ctx, 1, series.ID)
		require.NoError(t, err)
		assert.Len(t, exceptions, 1)
	})

	t.Run("should require a date for occurrence scope", func(t *testing.T) {
		_, service := setup(t)
		series, err := service.Create(ctx, monthlyDraft())
		require.NoError(t, err)

		_, err = service.Update(ctx, series.ID, ScopeOccurrence, nil, monthlyDraft())

		var validationErr ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "date", validationErr.Field)
	})

	t.Run("should conflict on a date outside the series range", func(t *testing.T) {
		_, service := setup(t)
		series, err := service.Create(ctx, monthlyDraft())
		require.NoError(t, err)
		target := date("2025-06-01")

		_, err = service.Update(ctx, series.ID, ScopeOccurrence, &target, monthlyDraft())

		var conflictErr ConflictError
		require.ErrorAs(t, err, &conflictErr)
	})

	t.Run("should return not found for a missing series", func(t *testing.T) {
		_, service := setup(t)
		target := date("2026-03-01")

		_, err := service.Update(ctx, 999, ScopeOccurrence, &target, monthlyDraft())

		assert.ErrorIs(t, err, ErrSeriesNotFound)
	})
}

func TestServiceImpl_Update_Future(t *testing.T) {
	t.Run("should split the series at the target date", func(t *testing.T) {
		_, service := setup(t)
		series, err := service.Create(ctx, monthlyDraft())
		require.NoError(t, err)

		draft := monthlyDraft()
		draft.Amount = decimal.NewFromInt(1350)
		target := date("2026-06-01")

		result, err := service.Update(ctx, series.ID, ScopeFuture, &target, draft)

		require.NoError(t, err)
		require.NotNil(t, result.Original)
		require.NotNil(t, result.NewSeries)

		// the original ends the day before the split point
		require.NotNil(t, result.Original.EndDate)
		assert.Equal(t, date("2026-05-31"), *result.Original.EndDate)

		// the successor starts at the split point and links back
		assert.Equal(t, target, result.NewSeries.StartDate)
		require.NotNil(t, result.NewSeries.ParentSeriesID)
		assert.Equal(t, series.ID, *result.NewSeries.ParentSeriesID)
		assert.True(t, decimal.NewFromInt(1350).Equal(result.NewSeries.Amount))
		assert.NotEqual(t, series.ID, result.NewSeries.ID)
	})

	t.Run("should conflict when splitting at the series start date", func(t *testing.T) {
		_, service := setup(t)
		series, err := service.Create(ctx, monthlyDraft())
		require.NoError(t, err)
		target := series.StartDate

		_, err = service.Update(ctx, series.ID, ScopeFuture, &target, monthlyDraft())

		var conflictErr ConflictError
		require.ErrorAs(t, err, &conflictErr)
	})

	t.Run("should leave the series untouched when the new definition is invalid", func(t *testing.T) {
		repo, service := setup(t)
		series, err := service.Create(ctx, monthlyDraft())
		require.NoError(t, err)

		draft := monthlyDraft()
		draft.Title = ""
		target := date("2026-06-01")

		_, err = service.Update(ctx, series.ID, ScopeFuture, &target, draft)

		var validationErr ValidationError
		require.ErrorAs(t, err, &validationErr)

		unchanged, err := repo.GetSeries(ctx, 1, series.ID)
		require.NoError(t, err)
		assert.Nil(t, unchanged.EndDate)
	})
}

func TestServiceImpl_Update_Entire(t *testing.T) {
	t.Run("should replace all mutable fields in place", func(t *testing.T) {
		_, service := setup(t)
		series, err := service.Create(ctx, monthlyDraft())
		require.NoError(t, err)

		draft := monthlyDraft()
		draft.Title = "Rent downtown"
		draft.Amount = decimal.NewFromInt(1500)
		draft.DayOfMonth = intPtr(5)

		result, err := service.Update(ctx, series.ID, ScopeEntire, nil, draft)

		require.NoError(t, err)
		require.NotNil(t, result.Updated)
		assert.Equal(t, series.ID, result.Updated.ID)
		assert.Equal(t, "Rent downtown", result.Updated.Title)
		assert.Equal(t, 5, *result.Updated.DayOfMonth)
	})

	t.Run("should preserve the parent link of a split successor", func(t *testing.T) {
		_, service := setup(t)
		series, err := service.Create(ctx, monthlyDraft())
		require.NoError(t, err)
		target := date("2026-06-01")
		split, err := service.Update(ctx, series.ID, ScopeFuture, &target, monthlyDraft())
		require.NoError(t, err)

		draft := monthlyDraft()
		draft.StartDate = target
		draft.Title = "Rent again"
		result, err := service.Update(ctx, split.NewSeries.ID, ScopeEntire, nil, draft)

		require.NoError(t, err)
		require.NotNil(t, result.Updated.ParentSeriesID)
		assert.Equal(t, series.ID, *result.Updated.ParentSeriesID)
	})
}

func TestServiceImpl_Delete(t *testing.T) {
	t.Run("should record a skip exception for occurrence scope", func(t *testing.T) {
		repo, service := setup(t)
		series, err := service.Create(ctx, monthlyDraft())
		require.NoError(t, err)
		target := date("2026-04-01")

		result, err := service.Delete(ctx, series.ID, ScopeOccurrence, &target)

		require.NoError(t, err)
		assert.True(t, result.ExceptionCreated)
		assert.False(t, result.SeriesDeleted)
		require.NotNil(t, result.Exception)
		assert.Equal(t, ExceptionSkip, result.Exception.Type)

		remaining, err := repo.GetSeries(ctx, 1, series.ID)
		require.NoError(t, err)
		assert.NotNil(t, remaining)
	})

	t.Run("should shorten the series for future scope", func(t *testing.T) {
		_, service := setup(t)
		series, err := service.Create(ctx, monthlyDraft())
		require.NoError(t, err)
		target := date("2026-06-01")

		result, err := service.Delete(ctx, series.ID, ScopeFuture, &target)

		require.NoError(t, err)
		assert.False(t, result.SeriesDeleted)
		require.NotNil(t, result.Shortened)
		require.NotNil(t, result.Shortened.EndDate)
		assert.Equal(t, date("2026-05-31"), *result.Shortened.EndDate)
	})

	t.Run("should conflict when truncating at the series start date", func(t *testing.T) {
		_, service := setup(t)
		series, err := service.Create(ctx, monthlyDraft())
		require.NoError(t, err)
		target := series.StartDate

		_, err = service.Delete(ctx, series.ID, ScopeFuture, &target)

		var conflictErr ConflictError
		require.ErrorAs(t, err, &conflictErr)
	})

	t.Run("should remove the series and its exceptions for entire scope", func(t *testing.T) {
		repo, service := setup(t)
		series, err := service.Create(ctx, monthlyDraft())
		require.NoError(t, err)
		target := date("2026-04-01")
		_, err = service.Delete(ctx, series.ID, ScopeOccurrence, &target)
		require.NoError(t, err)

		result, err := service.Delete(ctx, series.ID, ScopeEntire, nil)

		require.NoError(t, err)
		assert.True(t, result.SeriesDeleted)

		gone, err := repo.GetSeries(ctx, 1, series.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)
		exceptions, err := repo.GetExceptions(ctx, 1, series.ID)
		require.NoError(t, err)
		assert.Empty(t, exceptions)
	})

	t.Run("should return not found for a missing series", func(t *testing.T) {
		_, service := setup(t)

		_, err := service.Delete(ctx, 42, ScopeEntire, nil)

		assert.ErrorIs(t, err, ErrSeriesNotFound)
	})

	t.Run("should require a date for future scope", func(t *testing.T) {
		_, service := setup(t)
		series, err := service.Create(ctx, monthlyDraft())
		require.NoError(t, err)

		_, err = service.Delete(ctx, series.ID, ScopeFuture, nil)

		var validationErr ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "date", validationErr.Field)
	})
}
