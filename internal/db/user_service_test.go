package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	users := NewUserRepository(newTestDB(t), nil)

	alice, err := users.Create("alice", " Alice@Example.com ", "hash")
	require.NoError(t, err)
	assert.NotEmpty(t, alice.ID)
	assert.Equal(t, "alice@example.com", alice.Email)
	assert.False(t, alice.CreatedAt.IsZero())

	_, err = users.Create("alice2", "ALICE@example.com", "hash")
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := users.FindByEmail("alice@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	renamed, err := users.UpdateName(alice.ID, "Alice L.")
	require.NoError(t, err)
	assert.Equal(t, "Alice L.", renamed.Name)

	got, err = users.Get(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice L.", got.Name)
	assert.Equal(t, "alice@example.com", got.Email)

	require.NoError(t, users.Delete(alice.ID))
	_, err = users.Get(alice.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, users.Delete(alice.ID), ErrUserNotFound)
}

func TestUserRepository_NotFound(t *testing.T) {
	users := NewUserRepository(newTestDB(t), nil)

	_, err := users.FindByEmail("nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = users.UpdateName("missing", "x")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
