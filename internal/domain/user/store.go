package user

import "context"

// Store hands out pooled connections. Acquire must honour ctx so a caller
// can bound how long it waits for a free connection.
type Store interface {
	Acquire(ctx context.Context) (Conn, error)
}

// Conn is one borrowed connection. Release returns it to the pool and is
// safe to call more than once.
type Conn interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	// Insert returns ErrEmailTaken when the email uniqueness constraint
	// rejects the row.
	Insert(ctx context.Context, u NewUser) (User, error)
	Release()
}
