package balance

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Repo interface {
	GetBalance(ctx context.Context, userId int) (StartingBalance, error)
	StoreBalance(ctx context.Context, balance StartingBalance) (StartingBalance, error)
}

type RepoImpl struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) GetBalance(ctx context.Context, userId int) (StartingBalance, error) {
	row := r.db.QueryRow(ctx,
		`SELECT user_id, amount::text, effective_date, updated_at
		 FROM starting_balance WHERE user_id = $1`, userId)

	var balance StartingBalance
	var amount string
	err := row.Scan(&balance.UserID, &amount, &balance.EffectiveDate, &balance.UpdatedAt)
	if err == pgx.ErrNoRows {
		return StartingBalance{}, ErrNoStartingBalance
	}
	if err != nil {
		log.Errorf("Error fetching starting balance: %v", err)
		return StartingBalance{}, fmt.Errorf("failed to fetch starting balance: %w", err)
	}
	balance.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return StartingBalance{}, fmt.Errorf("failed to parse starting balance amount: %w", err)
	}
	return balance, nil
}

func (r *RepoImpl) StoreBalance(ctx context.Context, balance StartingBalance) (StartingBalance, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO starting_balance (user_id, amount, effective_date, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE
		 SET amount = EXCLUDED.amount,
		     effective_date = EXCLUDED.effective_date,
		     updated_at = EXCLUDED.updated_at
		 RETURNING updated_at`,
		balance.UserID, balance.Amount.StringFixed(2), balance.EffectiveDate, time.Now())
	if err := row.Scan(&balance.UpdatedAt); err != nil {
		log.Errorf("Error storing starting balance: %v", err)
		return StartingBalance{}, fmt.Errorf("failed to store starting balance: %w", err)
	}
	return balance, nil
}
