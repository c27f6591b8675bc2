package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/geocoder89/staffhub/internal/domain/user"
	"golang.org/x/sync/semaphore"
)

// UsersRepo keeps users in a map keyed by email. A weighted semaphore stands
// in for the connection pool so borrowing behaves like the SQL stores.
type UsersRepo struct {
	conns *semaphore.Weighted
	now   func() time.Time

	mu     sync.RWMutex
	nextID int64
	items  map[string]user.User
}

func NewUsersRepo(maxConns int) *UsersRepo {
	if maxConns <= 0 {
		maxConns = 5
	}

	return &UsersRepo{
		conns: semaphore.NewWeighted(int64(maxConns)),
		now:   time.Now,
		items: make(map[string]user.User),
	}
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *UsersRepo) Acquire(ctx context.Context) (user.Conn, error) {
	if err := r.conns.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire memory conn: %w", err)
	}
	return &usersConn{repo: r}, nil
}

// Len reports the number of stored users.
func (r *UsersRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Get returns the stored row for email, hash included.
func (r *UsersRepo) Get(email string) (user.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[email]
	return u, ok
}

type usersConn struct {
	repo *UsersRepo
	once sync.Once
}

func (c *usersConn) Release() {
	c.once.Do(func() { c.repo.conns.Release(1) })
}

func (c *usersConn) EmailExists(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	c.repo.mu.RLock()
	_, ok := c.repo.items[email]
	c.repo.mu.RUnlock()

	return ok, nil
}

func (c *usersConn) Insert(ctx context.Context, nu user.NewUser) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}

	now := c.repo.now().UTC()

	c.repo.mu.Lock()
	defer c.repo.mu.Unlock()

	if _, ok := c.repo.items[nu.Email]; ok {
		return user.User{}, user.ErrEmailTaken
	}

	c.repo.nextID++
	u := user.User{
		ID:           c.repo.nextID,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		Name:         nu.Name,
		Role:         nu.Role,
		IsActive:     nu.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	c.repo.items[u.Email] = u

	return u, nil
}

var _ user.Store = (*UsersRepo)(nil)
