// Package sqlite provides a SQLite-backed users store for local runs.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/staffhub/internal/db/schema"
	"github.com/geocoder89/staffhub/internal/domain/user"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists users in a SQLite file.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens the database at path, bounds its connection pool and applies
// the users schema.
func Open(path string, maxConns int) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if maxConns > 0 {
		sqlDB.SetMaxOpenConns(maxConns)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := sqlDB.Exec(schema.SQLite); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// Acquire reserves one connection of the pool for the caller.
func (s *Store) Acquire(ctx context.Context) (user.Conn, error) {
	conn, err := s.sqlDB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire sqlite conn: %w", err)
	}
	return &usersConn{conn: conn, now: s.now}, nil
}

// CountByEmail is used by tests to assert how many rows exist for email.
func (s *Store) CountByEmail(ctx context.Context, email string) (int, error) {
	var n int
	err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&n)
	return n, err
}

type usersConn struct {
	conn *sql.Conn
	now  func() time.Time
	once sync.Once
}

func (c *usersConn) Release() {
	c.once.Do(func() { _ = c.conn.Close() })
}

func (c *usersConn) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := c.conn.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("users email exists: %w", err)
	}
	return exists, nil
}

func (c *usersConn) Insert(ctx context.Context, nu user.NewUser) (user.User, error) {
	now := c.now().UTC().Truncate(time.Millisecond)

	var name sql.NullString
	if nu.Name != nil {
		name = sql.NullString{String: *nu.Name, Valid: true}
	}

	res, err := c.conn.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, name, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, nu.Email, nu.PasswordHash, name, string(nu.Role), nu.IsActive, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("users insert: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return user.User{}, fmt.Errorf("users insert id: %w", err)
	}

	return user.User{
		ID:           id,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		Name:         nu.Name,
		Role:         nu.Role,
		IsActive:     nu.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") && strings.Contains(message, "users.email")
}

var _ user.Store = (*Store)(nil)
