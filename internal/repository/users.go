package repository

import (
	"strconv"
	"sync"

	"github.com/jcmexdev/bakeryspot/internal/domain/user"
)

// Users is an in-memory user store with sequential numeric IDs.
type Users struct {
	mu      sync.RWMutex
	users   map[int64]user.User
	byEmail map[string]int64
	nextID  int64
}

func NewUsers() *Users {
	return &Users{
		users:   make(map[int64]user.User),
		byEmail: make(map[string]int64),
		nextID:  1,
	}
}

// Save persists a user, assigning a numeric ID on first persistence.
func (r *Users) Save(u *user.User) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID == 0 {
		u.ID = r.nextID
		r.nextID++
	}
	r.users[u.ID] = *u
	r.byEmail[u.Email] = u.ID
	out := r.users[u.ID]
	return &out, nil
}

// GetByID returns the user or a *NotFoundError.
func (r *Users) GetByID(id int64) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, &NotFoundError{Entity: "user", ID: strconv.FormatInt(id, 10)}
	}
	out := u
	return &out, nil
}

// GetByEmail returns the user or a *NotFoundError.
func (r *Users) GetByEmail(email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, &NotFoundError{Entity: "user", ID: email}
	}
	out := r.users[id]
	return &out, nil
}
