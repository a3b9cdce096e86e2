package user

import (
	"context"
	"sync"
)

type RepoStub struct {
	mu     sync.Mutex
	users  map[string]User
	nextId int
}

func NewRepoStub() *RepoStub {
	return &RepoStub{users: make(map[string]User), nextId: 1}
}

func (r *RepoStub) CreateUser(ctx context.Context, user User) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Id = r.nextId
	r.nextId++
	r.users[user.Uid] = user
	return user.Id, nil
}

func (r *RepoStub) GetUserByUid(ctx context.Context, uid string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[uid]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}
