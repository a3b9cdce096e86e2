package projection

import (
	"context"
	"fmt"
	"time"

	"github.com/balanza/balanza/internal/event_bus"
	"github.com/balanza/balanza/internal/utils"
	"github.com/balanza/balanza/pkg/balance"
	"github.com/balanza/balanza/pkg/entry"
	"github.com/balanza/balanza/pkg/occurrence"
)

// MaxHorizonYears bounds how far past today a projection may reach.
const MaxHorizonYears = 10

// Aggregator supplies the signed occurrence totals over a window. It is
// satisfied by the occurrence service.
type Aggregator interface {
	Totals(ctx context.Context, from, to time.Time) (occurrence.Totals, error)
}

type Service interface {
	Project(ctx context.Context, date time.Time) (Projection, error)
}

// ServiceImpl enforces the projection date limits and delegates the arithmetic
// to calculate. Dates before the balance anchor or beyond the horizon are
// rejected before any expansion work happens.
type ServiceImpl struct {
	balances   balance.Service
	aggregator Aggregator
	clock      utils.Clock
	bus        *event_bus.EventBus
}

func NewService(balances balance.Service, aggregator Aggregator, clock utils.Clock, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{balances: balances, aggregator: aggregator, clock: clock, bus: bus}
}

func (s *ServiceImpl) Project(ctx context.Context, date time.Time) (Projection, error) {
	anchor, err := s.balances.GetBalance(ctx)
	if err != nil {
		return Projection{}, err
	}

	minDate := utils.Midnight(anchor.EffectiveDate)
	maxDate := utils.Midnight(s.clock.Now()).AddDate(MaxHorizonYears, 0, 0)
	if date.Before(minDate) {
		return Projection{}, entry.ValidationError{
			Field:  "date",
			Reason: fmt.Sprintf("must not be before the starting balance effective date %s", utils.FormatDate(minDate)),
		}
	}
	if date.After(maxDate) {
		return Projection{}, entry.ValidationError{
			Field:  "date",
			Reason: fmt.Sprintf("must not be after %s", utils.FormatDate(maxDate)),
		}
	}

	projection, err := calculate(ctx, anchor, date, s.aggregator)
	if err != nil {
		return Projection{}, err
	}
	projection.MinDate = minDate
	projection.MaxDate = maxDate

	if s.bus != nil {
		s.bus.Publish(event_bus.NewEvent(ctx, event_bus.ProjectionComputed, event_bus.ProjectionRequest{
			TargetDate: date,
		}))
	}
	return projection, nil
}

// calculate is the pure arithmetic: anchor amount plus signed totals over
// [effective_date, date]. Occurrences on the effective date itself count, the
// anchor describes the balance before that day's activity.
func calculate(ctx context.Context, anchor balance.StartingBalance, date time.Time, aggregator Aggregator) (Projection, error) {
	totals, err := aggregator.Totals(ctx, utils.Midnight(anchor.EffectiveDate), date)
	if err != nil {
		return Projection{}, err
	}

	netChange := totals.Income.Sub(totals.Expense)
	return Projection{
		Date:             date,
		ProjectedBalance: anchor.Amount.Add(netChange),
		StartingAmount:   anchor.Amount,
		EffectiveDate:    anchor.EffectiveDate,
		TotalIncome:      totals.Income,
		TotalExpense:     totals.Expense,
		NetChange:        netChange,
	}, nil
}
