package projection

import (
	"time"

	"github.com/shopspring/decimal"
)

// Projection is the computed balance at a target date together with the
// figures it was derived from.
type Projection struct {
	Date             time.Time
	ProjectedBalance decimal.Decimal
	StartingAmount   decimal.Decimal
	EffectiveDate    time.Time
	TotalIncome      decimal.Decimal
	TotalExpense     decimal.Decimal
	NetChange        decimal.Decimal
	MinDate          time.Time
	MaxDate          time.Time
}
