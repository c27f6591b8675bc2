package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/geocoder89/staffhub/internal/domain/user"
	"github.com/geocoder89/staffhub/internal/observability"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const usersEmailConstraint = "users_email_key"

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Acquire borrows a connection from the pool. It blocks until one is free or
// ctx is done.
func (r *UsersRepo) Acquire(ctx context.Context) (user.Conn, error) {
	var conn *pgxpool.Conn

	err := r.prom.ObserveDB("users.acquire", func() error {
		var err error
		conn, err = r.pool.Acquire(ctx)
		return err
	})

	if err != nil {
		return nil, fmt.Errorf("acquire users conn: %w", err)
	}

	return &usersConn{conn: conn, prom: r.prom}, nil
}

type usersConn struct {
	conn *pgxpool.Conn
	prom *observability.Prom
	once sync.Once
}

func (c *usersConn) Release() {
	c.once.Do(c.conn.Release)
}

func (c *usersConn) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool

	err := c.prom.ObserveDB("users.email_exists", func() error {
		return c.conn.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	})

	if err != nil {
		return false, fmt.Errorf("users email exists: %w", err)
	}

	return exists, nil
}

func (c *usersConn) Insert(ctx context.Context, nu user.NewUser) (user.User, error) {
	u := user.User{
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		Name:         nu.Name,
		Role:         nu.Role,
		IsActive:     nu.IsActive,
	}

	err := c.prom.ObserveDB("users.insert", func() error {
		return c.conn.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, nu.Email, nu.PasswordHash, nu.Name, string(nu.Role), nu.IsActive).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	})

	if err != nil {
		if isEmailUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("users insert: %w", err)
	}

	return u, nil
}

func isEmailUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == usersEmailConstraint
}

var _ user.Store = (*UsersRepo)(nil)
