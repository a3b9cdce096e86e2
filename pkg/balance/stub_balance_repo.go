package balance

import (
	"context"
	"time"
)

type RepoStub struct {
	balances map[int]StartingBalance
}

func NewRepoStub() *RepoStub {
	return &RepoStub{balances: make(map[int]StartingBalance)}
}

func (r *RepoStub) GetBalance(_ context.Context, userId int) (StartingBalance, error) {
	balance, ok := r.balances[userId]
	if !ok {
		return StartingBalance{}, ErrNoStartingBalance
	}
	return balance, nil
}

func (r *RepoStub) StoreBalance(_ context.Context, balance StartingBalance) (StartingBalance, error) {
	balance.UpdatedAt = time.Now()
	r.balances[balance.UserID] = balance
	return balance, nil
}
