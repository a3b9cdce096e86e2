package balance

import (
	"context"
	"fmt"
	"time"

	"github.com/balanza/balanza/pkg/entry"
	"github.com/balanza/balanza/pkg/user"
	"github.com/shopspring/decimal"
)

type Service interface {
	GetBalance(ctx context.Context) (StartingBalance, error)
	SetBalance(ctx context.Context, amount decimal.Decimal, effectiveDate time.Time) (StartingBalance, error)
}

type ServiceImpl struct {
	repo Repo
}

func NewService(repo Repo) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) GetBalance(ctx context.Context) (StartingBalance, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return StartingBalance{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetBalance(ctx, userId)
}

// SetBalance replaces the user's projection anchor. A negative amount is
// allowed, an overdrawn account is a valid starting point.
func (s *ServiceImpl) SetBalance(ctx context.Context, amount decimal.Decimal, effectiveDate time.Time) (StartingBalance, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return StartingBalance{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if !amount.Equal(amount.Round(2)) {
		return StartingBalance{}, entry.ValidationError{Field: "amount", Reason: "must have at most 2 decimal digits"}
	}
	if effectiveDate.IsZero() {
		return StartingBalance{}, entry.ValidationError{Field: "effective_date", Reason: "is required"}
	}

	return s.repo.StoreBalance(ctx, StartingBalance{
		UserID:        userId,
		Amount:        amount,
		EffectiveDate: effectiveDate,
	})
}
