// ABOUTME: Tests for the three password update flows and their guards
// ABOUTME: Covers re-verification, rank policy, and the forced-reset flag

package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hydroponics-system/hydro-api-microservice/internal/auth"
	"github.com/hydroponics-system/hydro-api-microservice/internal/dictionary"
)

type fakeVerifier struct {
	acceptedPassword string
}

func (f *fakeVerifier) Authenticate(_ context.Context, _, password string) (*auth.AuthToken, error) {
	if password != f.acceptedPassword {
		return nil, auth.ErrInvalidCredentials
	}
	return &auth.AuthToken{Token: "ok"}, nil
}

func seedUser(t *testing.T, dir *fakeDirectory, email string, role dictionary.WebRole) *dictionary.User {
	t.Helper()
	user := &dictionary.User{Email: email, WebRole: role}
	require.NoError(t, dir.CreateUser(context.Background(), user))
	require.NoError(t, dir.InsertUserPassword(context.Background(), user.ID, "old-hash"))
	return user
}

func userCtx(user *dictionary.User) context.Context {
	return auth.WithPrincipal(context.Background(), auth.UserPrincipal{User: *user})
}

func TestUpdateOwnPassword(t *testing.T) {
	dir := newFakeDirectory()
	target := seedUser(t, dir, "a@b.c", dictionary.WebRoleUser)
	svc := NewCredentialsService(dir, &fakeVerifier{acceptedPassword: "current"}, nil)

	err := svc.UpdateOwnPassword(userCtx(target), "current", "new password 1")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(dir.hashes[target.ID]), []byte("new password 1")))
}

func TestUpdateOwnPasswordRejectsWrongCurrent(t *testing.T) {
	dir := newFakeDirectory()
	target := seedUser(t, dir, "a@b.c", dictionary.WebRoleUser)
	svc := NewCredentialsService(dir, &fakeVerifier{acceptedPassword: "current"}, nil)

	err := svc.UpdateOwnPassword(userCtx(target), "wrong", "new password 1")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, "old-hash", dir.hashes[target.ID], "password must not change")
}

func TestUpdateOwnPasswordRejectsShortPassword(t *testing.T) {
	dir := newFakeDirectory()
	target := seedUser(t, dir, "a@b.c", dictionary.WebRoleUser)
	svc := NewCredentialsService(dir, &fakeVerifier{acceptedPassword: "current"}, nil)

	err := svc.UpdateOwnPassword(userCtx(target), "current", "short")
	require.Error(t, err)
}

func TestUpdatePasswordByID(t *testing.T) {
	dir := newFakeDirectory()
	target := seedUser(t, dir, "target@b.c", dictionary.WebRoleDeveloper)
	admin := seedUser(t, dir, "admin@b.c", dictionary.WebRoleAdmin)
	peer := seedUser(t, dir, "peer@b.c", dictionary.WebRoleDeveloper)
	svc := NewCredentialsService(dir, &fakeVerifier{}, nil)

	tests := []struct {
		name    string
		ctx     context.Context
		wantErr bool
	}{
		{"owner can update", userCtx(target), false},
		{"higher rank can update", userCtx(admin), false},
		{"equal rank rejected", userCtx(peer), true},
		{"unauthenticated rejected", context.Background(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.UpdatePasswordByID(tt.ctx, target.ID, "new password 1")
			if tt.wantErr {
				assert.ErrorIs(t, err, auth.ErrInsufficientPermissions)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResetPassword(t *testing.T) {
	dir := newFakeDirectory()
	target := seedUser(t, dir, "a@b.c", dictionary.WebRoleUser)
	svc := NewCredentialsService(dir, &fakeVerifier{}, nil)

	// Token without the reset flag is refused
	err := svc.ResetPassword(userCtx(target), "new password 1")
	require.ErrorIs(t, err, auth.ErrInsufficientPermissions)

	flagged := *target
	flagged.ResetPassword = true
	err = svc.ResetPassword(userCtx(&flagged), "new password 1")
	require.NoError(t, err)

	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(dir.hashes[target.ID]), []byte("new password 1")))
	assert.False(t, dir.resetFlags[target.ID], "reset flag must be cleared")
}
