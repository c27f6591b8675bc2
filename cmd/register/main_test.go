package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apphttp "github.com/geocoder89/staffhub/internal/http"
	"github.com/geocoder89/staffhub/internal/registration"
	"github.com/geocoder89/staffhub/internal/repo/memory"
	"github.com/geocoder89/staffhub/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func startAPI(t *testing.T) (*client, *memory.UsersRepo) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := memory.NewUsersRepo(2)
	svc := registration.New(repo, security.NewHasher(bcrypt.MinCost), nil, log, nil, registration.Config{})

	srv := httptest.NewServer(apphttp.NewRouter(apphttp.RouterDeps{
		Env:       "test",
		Log:       log,
		Registrar: svc,
	}))
	t.Cleanup(srv.Close)

	return &client{base: srv.URL, http: &http.Client{Timeout: 5 * time.Second}}, repo
}

func TestRun_RegistersAfterFixingErrors(t *testing.T) {
	c, repo := startAPI(t)

	input := strings.Join([]string{
		"Ada Lovelace",
		"ada@example.com",
		"short1",   // too short
		"short1",   // confirm
		"abcd1234", // re-prompted password
		"abcd1234", // re-prompted confirm
	}, "\n") + "\n"

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), strings.NewReader(input), &out, c))

	assert.Contains(t, out.String(), "Password must be at least 8 characters.")
	assert.Contains(t, out.String(), "Account created successfully!")

	stored, ok := repo.Get("ada@example.com")
	require.True(t, ok)
	require.NotNil(t, stored.Name)
	assert.Equal(t, "Ada Lovelace", *stored.Name)
}

func TestRun_ReportsServerRejection(t *testing.T) {
	c, _ := startAPI(t)

	input := "\ndup@example.com\nabcd1234\nabcd1234\n"

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), strings.NewReader(input), &out, c))

	out.Reset()
	require.NoError(t, run(context.Background(), strings.NewReader(input), &out, c))

	assert.Contains(t, out.String(), "That email is already registered.")
	assert.Contains(t, out.String(), "Registration failed: An account with this email already exists")
}

func TestRun_EOFBeforeClean(t *testing.T) {
	c, _ := startAPI(t)

	err := run(context.Background(), strings.NewReader("\nnot-an-email\n"), io.Discard, c)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
