package balance

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNoStartingBalance = errors.New("no starting balance configured")

// StartingBalance anchors all projections for a user. There is at most one per
// user; storing a new one replaces the previous anchor.
type StartingBalance struct {
	UserID        int
	Amount        decimal.Decimal
	EffectiveDate time.Time
	UpdatedAt     time.Time
}
