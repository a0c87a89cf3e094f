package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/existflow/projtrack/internal/store"
)

func newTestGate(t *testing.T) (*Gate, store.Store) {
	t.Helper()
	mem, err := store.NewMemoryStore()
	require.NoError(t, err)
	return NewGate(mem, bcrypt.MinCost), mem
}

func TestRegister(t *testing.T) {
	g, s := newTestGate(t)
	ctx := context.Background()

	u, err := g.Register(ctx, "alice", "secret", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "secret", u.PasswordHash)
	assert.False(t, u.CreatedAt.IsZero())

	stored, err := s.FindUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.PasswordHash, stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), passwordKey("secret")))
}

func TestRegister_LongPassword(t *testing.T) {
	g, _ := newTestGate(t)
	ctx := context.Background()
	long := strings.Repeat("a", 73)

	_, err := g.Register(ctx, "bob", long, long)
	require.NoError(t, err)

	_, err = g.Login(ctx, "bob", long)
	assert.NoError(t, err)

	// bytes past 72 still count
	_, err = g.Login(ctx, "bob", strings.Repeat("a", 72)+"b")
	assert.ErrorIs(t, err, ErrLoginFailed)
	_, err = g.Login(ctx, "bob", strings.Repeat("a", 72))
	assert.ErrorIs(t, err, ErrLoginFailed)
}

func TestRegister_InvalidInput(t *testing.T) {
	tests := []struct {
		name                        string
		username, password, confirm string
	}{
		{"empty username", "", "pw", "pw"},
		{"empty password", "alice", "", ""},
		{"mismatch", "alice", "pw", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, s := newTestGate(t)

			_, err := g.Register(context.Background(), tt.username, tt.password, tt.confirm)
			assert.ErrorIs(t, err, ErrInvalidInput)

			var aerr *Error
			require.True(t, errors.As(err, &aerr))
			assert.NotEmpty(t, aerr.Title)
			assert.NotEmpty(t, aerr.Message)

			users, err := s.ListUsers(context.Background())
			require.NoError(t, err)
			assert.Empty(t, users)
		})
	}
}

func TestRegister_DuplicateLeavesUsersUnchanged(t *testing.T) {
	g, s := newTestGate(t)
	ctx := context.Background()

	_, err := g.Register(ctx, "alice", "first", "first")
	require.NoError(t, err)
	before, err := s.ListUsers(ctx)
	require.NoError(t, err)

	_, err = g.Register(ctx, "alice", "second", "second")
	assert.ErrorIs(t, err, ErrUserExists)
	assert.False(t, errors.Is(err, ErrLoginFailed))

	after, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = g.Login(ctx, "alice", "first")
	assert.NoError(t, err)
}

func TestLogin(t *testing.T) {
	g, s := newTestGate(t)
	ctx := context.Background()

	_, err := g.Register(ctx, "Alice", "Secret", "Secret")
	require.NoError(t, err)
	before, err := s.ListUsers(ctx)
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"exact match", "Alice", "Secret", nil},
		{"wrong password", "Alice", "secret", ErrLoginFailed},
		{"username case differs", "alice", "Secret", ErrLoginFailed},
		{"unknown user", "bob", "Secret", ErrLoginFailed},
		{"empty username", "", "Secret", ErrInvalidInput},
		{"empty password", "Alice", "", ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := g.Login(ctx, tt.username, tt.password)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "Alice", u.Username)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	after, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
