package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/geocoder89/staffhub/internal/domain/user"
	"github.com/geocoder89/staffhub/internal/repo/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersRepo_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUsersRepo(2)

	conn, err := repo.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()

	first, err := conn.Insert(ctx, user.NewFromRegistration("dup@x.com", "h1", nil))
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)

	_, err = conn.Insert(ctx, user.NewFromRegistration("dup@x.com", "h2", nil))
	require.ErrorIs(t, err, user.ErrEmailTaken)

	stored, ok := repo.Get("dup@x.com")
	require.True(t, ok)
	assert.Equal(t, "h1", stored.PasswordHash)
	assert.Equal(t, 1, repo.Len())
}

func TestUsersRepo_AcquireBoundedByPoolSize(t *testing.T) {
	repo := memory.NewUsersRepo(1)

	held, err := repo.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = repo.Acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// releasing twice must not free a second slot
	held.Release()
	held.Release()

	c1, err := repo.Acquire(context.Background())
	require.NoError(t, err)

	ctx2, cancel2 := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel2()

	_, err = repo.Acquire(ctx2)
	require.Error(t, err)

	c1.Release()
}
