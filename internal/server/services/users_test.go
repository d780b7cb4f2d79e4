package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/carmodpicker/internal/common"
	"github.com/dmitrijs2005/carmodpicker/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_HashesPassword(t *testing.T) {
	e := newTestEnv(t)

	u := e.register(t, "alice")
	assert.NotZero(t, u.ID)
	assert.Equal(t, "alice@x.com", u.Email)
	assert.NotEqual(t, "pw123", u.HashedPassword)
	assert.True(t, auth.VerifyPassword("pw123", u.HashedPassword))
	assert.False(t, u.EmailVerified)
	assert.False(t, u.Disabled)
}

func TestRegister_Duplicates(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.register(t, "alice")

	_, err := e.users.Register(ctx, RegisterInput{Username: "alice", Email: "other@x.com", Password: "pw"})
	require.ErrorIs(t, err, common.ErrUsernameTaken)
	assert.ErrorIs(t, err, common.ErrorConflict)
	assert.Equal(t, "Username already registered", common.Detail(err, ""))

	_, err = e.users.Register(ctx, RegisterInput{Username: "alice2", Email: "alice@x.com", Password: "pw"})
	require.ErrorIs(t, err, common.ErrEmailTaken)
	assert.Equal(t, "Email already registered", common.Detail(err, ""))
}

func TestConflictDetail_FromStoreBackstop(t *testing.T) {
	err := conflictDetail(common.ErrEmailTaken)
	assert.ErrorIs(t, err, common.ErrEmailTaken)
	assert.Equal(t, "Email already registered", common.Detail(err, ""))

	other := errors.New("boom")
	assert.Equal(t, other, conflictDetail(other))
	assert.NoError(t, conflictDetail(nil))
}

func TestGetUser(t *testing.T) {
	e := newTestEnv(t)
	alice := e.register(t, "alice")

	u, err := e.users.Get(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = e.users.Get(context.Background(), 999)
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, "User not found", common.Detail(err, ""))
}

func TestUpdateUser(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")

	t.Run("other user is forbidden", func(t *testing.T) {
		_, err := e.users.Update(ctx, bob, alice.ID, UserUpdateInput{FirstName: ptr("Eve")})
		require.ErrorIs(t, err, common.ErrorForbidden)
		assert.Equal(t, "Not authorized to update this user", common.Detail(err, ""))
	})

	t.Run("names need no password", func(t *testing.T) {
		u, err := e.users.Update(ctx, alice, alice.ID, UserUpdateInput{FirstName: ptr("Alice"), LastName: ptr("Liddell")})
		require.NoError(t, err)
		assert.Equal(t, "Alice", *u.FirstName)
		assert.Equal(t, "Liddell", *u.LastName)
		assert.Equal(t, "alice", u.Username)
	})

	t.Run("sensitive change needs current password", func(t *testing.T) {
		_, err := e.users.Update(ctx, alice, alice.ID, UserUpdateInput{Email: ptr("new@x.com")})
		require.ErrorIs(t, err, common.ErrorValidation)
		assert.Equal(t, detailCurrentRequired, common.Detail(err, ""))

		_, err = e.users.Update(ctx, alice, alice.ID, UserUpdateInput{Password: ptr("new"), CurrentPassword: ptr("wrong")})
		require.ErrorIs(t, err, common.ErrorValidation)
		assert.Equal(t, "Incorrect current password", common.Detail(err, ""))
	})

	t.Run("email change resets verification", func(t *testing.T) {
		_, err := e.auth.ConfirmEmailVerification(ctx, mustIssue(t, e, "alice@x.com", auth.PurposeVerifyEmail))
		require.NoError(t, err)

		u, err := e.users.Update(ctx, alice, alice.ID, UserUpdateInput{Email: ptr("alice@new.com"), CurrentPassword: ptr("pw123")})
		require.NoError(t, err)
		assert.Equal(t, "alice@new.com", u.Email)
		assert.False(t, u.EmailVerified)
	})

	t.Run("email taken", func(t *testing.T) {
		_, err := e.users.Update(ctx, alice, alice.ID, UserUpdateInput{Email: ptr("bob@x.com"), CurrentPassword: ptr("pw123")})
		require.ErrorIs(t, err, common.ErrEmailTaken)
		assert.Equal(t, "Email already registered", common.Detail(err, ""))
	})

	t.Run("password change", func(t *testing.T) {
		_, err := e.users.Update(ctx, alice, alice.ID, UserUpdateInput{Password: ptr("s3cret"), CurrentPassword: ptr("pw123")})
		require.NoError(t, err)

		_, err = e.auth.Login(ctx, "alice", "s3cret")
		assert.NoError(t, err)
		_, err = e.auth.Login(ctx, "alice", "pw123")
		assert.ErrorIs(t, err, common.ErrorUnauthenticated)
	})
}

func TestDeleteUser_CascadesAndReturnsUser(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	g := e.garage(t, alice)

	_, err := e.users.Delete(ctx, bob, alice.ID)
	require.ErrorIs(t, err, common.ErrorForbidden)
	assert.Equal(t, "Not authorized to delete this user", common.Detail(err, ""))

	u, err := e.users.Delete(ctx, alice, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)

	_, err = e.cars.Get(ctx, g.car.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = e.parts.Get(ctx, g.part.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSetDisabled(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.register(t, "alice")

	u, err := e.users.SetDisabled(ctx, "alice", true)
	require.NoError(t, err)
	assert.True(t, u.Disabled)

	_, err = e.users.SetDisabled(ctx, "nobody", true)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	u, err = e.users.SetDisabled(ctx, "alice", false)
	require.NoError(t, err)
	assert.False(t, u.Disabled)
}
