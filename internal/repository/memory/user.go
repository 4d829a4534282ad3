package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dtroode/dailyphrase/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	mu     sync.RWMutex
	users  map[int64]model.User
	nextID int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[int64]model.User)}
}

// Add stores user, assigning the next id when user.ID is zero.
func (r *UserRepository) Add(user model.User) model.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == 0 {
		r.nextID++
		user.ID = r.nextID
	} else if user.ID > r.nextID {
		r.nextID = user.ID
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.users[user.ID] = user
	return user
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (r *UserRepository) ActiveUsers(ctx context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var users []model.User
	for _, user := range r.users {
		if user.Status == model.StatusActive {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *UserRepository) SetStatus(ctx context.Context, id int64, status model.UserStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return model.ErrNotFound
	}
	user.Status = status
	user.UpdatedAt = time.Now()
	r.users[id] = user
	return nil
}
