package user

import (
	"errors"
	"time"
)

var ErrEmailTaken = errors.New("email already registered")

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Name         *string   `json:"name"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Public is the only shape of a user that leaves the server.
type Public struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (u User) Public() Public {
	return Public{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

// NewUser is the insert payload. Stores fill in id and timestamps.
type NewUser struct {
	Email        string
	PasswordHash string
	Name         *string
	Role         Role
	IsActive     bool
}

func NewFromRegistration(email, passwordHash string, name *string) NewUser {
	return NewUser{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         RoleEmployee,
		IsActive:     true,
	}
}
