package identity

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/optica/admin/internal/application/screen"
	"github.com/optica/admin/internal/domain/identity"
	"github.com/optica/admin/internal/domain/shared"
	"github.com/optica/admin/internal/infrastructure/api/apitest"
	"github.com/optica/admin/internal/infrastructure/auth"
	"github.com/optica/admin/internal/infrastructure/kvstore"
	"github.com/optica/admin/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc     *AuthService
	backend *testutil.Backend
	store   *kvstore.MemoryStore
	session *identity.Session
	notes   *screen.ChannelNotifier
}

func setup(t *testing.T) fixture {
	t.Helper()
	b := testutil.NewBackend(t)
	session := identity.NewSession()
	client := apitest.NewClient(t, b.BaseURL(), session)
	store := kvstore.NewMemoryStore()
	notes := screen.NewChannelNotifier(8)
	svc := NewAuthService(client, session, store, auth.NewInspector(time.Minute), notes, nil)
	return fixture{svc: svc, backend: b, store: store, session: session, notes: notes}
}

func storedValue(t *testing.T, store shared.KVStore, key string) (string, bool) {
	t.Helper()
	v, ok, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func TestAuthService_Login(t *testing.T) {
	t.Run("successful login persists the session", func(t *testing.T) {
		f := setup(t)
		ctx := testutil.Context(t)

		u, err := f.svc.Login(ctx, identity.Credentials{Email: testutil.AdminEmail, Password: testutil.AdminPassword})
		require.NoError(t, err)
		assert.Equal(t, "Admin", u.Name)
		assert.Equal(t, testutil.AdminToken, f.session.Token())
		assert.Equal(t, "1", f.svc.UserID())

		token, ok := storedValue(t, f.store, shared.KeySessionToken)
		require.True(t, ok)
		assert.Equal(t, testutil.AdminToken, token)
		raw, ok := storedValue(t, f.store, shared.KeySessionUser)
		require.True(t, ok)
		stored, err := identity.DecodeUser(raw)
		require.NoError(t, err)
		assert.Equal(t, u, stored)
	})

	t.Run("wrong password shows the server message", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.Login(testutil.Context(t), identity.Credentials{Email: testutil.AdminEmail, Password: "nope"})
		require.Error(t, err)
		assert.False(t, f.session.LoggedIn())
		assert.Equal(t, []string{"Invalid credentials"}, f.notes.Texts())
	})

	t.Run("malformed email never reaches the server", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.Login(testutil.Context(t), identity.Credentials{Email: "admin", Password: "x"})
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Empty(t, f.backend.Requests(http.MethodPost, "/login"))
	})
}

func TestAuthService_Register(t *testing.T) {
	f := setup(t)
	ctx := testutil.Context(t)

	_, err := f.svc.Register(ctx, identity.Registration{
		Name: "Owner", Email: "owner@optica.test", Password: "long-enough", PasswordConfirmation: "different",
	})
	assert.ErrorIs(t, err, shared.ErrValidation)

	u, err := f.svc.Register(ctx, identity.Registration{
		Name: "Owner", Email: "owner@optica.test", Password: "long-enough", PasswordConfirmation: "long-enough",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, u.ID)
	assert.True(t, f.session.LoggedIn())
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("revokes remotely and clears locally", func(t *testing.T) {
		f := setup(t)
		ctx := testutil.Context(t)
		_, err := f.svc.Login(ctx, identity.Credentials{Email: testutil.AdminEmail, Password: testutil.AdminPassword})
		require.NoError(t, err)

		require.NoError(t, f.svc.Logout(ctx))
		assert.True(t, f.backend.LoggedOut())
		assert.False(t, f.session.LoggedIn())
		_, ok := storedValue(t, f.store, shared.KeySessionToken)
		assert.False(t, ok)
	})

	t.Run("remote failure still clears locally", func(t *testing.T) {
		f := setup(t)
		ctx := testutil.Context(t)
		_, err := f.svc.Login(ctx, identity.Credentials{Email: testutil.AdminEmail, Password: testutil.AdminPassword})
		require.NoError(t, err)

		f.backend.Fail(http.MethodPost, "/logout", http.StatusInternalServerError, 1, "")
		require.NoError(t, f.svc.Logout(ctx))
		assert.False(t, f.session.LoggedIn())
		_, ok := storedValue(t, f.store, shared.KeySessionUser)
		assert.False(t, ok)
	})
}

func TestAuthService_Restore(t *testing.T) {
	jwtWithExpiry := func(t *testing.T, exp time.Time) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		}).SignedString([]byte("secret"))
		require.NoError(t, err)
		return token
	}
	user, err := identity.EncodeUser(identity.User{ID: 7, Name: "Saved"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		token    func(t *testing.T) string
		restored bool
	}{
		{name: "opaque token", token: func(*testing.T) string { return "12|opaque" }, restored: true},
		{name: "valid jwt", token: func(t *testing.T) string { return jwtWithExpiry(t, time.Now().Add(time.Hour)) }, restored: true},
		{name: "expired jwt", token: func(t *testing.T) string { return jwtWithExpiry(t, time.Now().Add(-time.Hour)) }},
		{name: "nothing stored", token: func(*testing.T) string { return "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			ctx := testutil.Context(t)
			if tok := tt.token(t); tok != "" {
				require.NoError(t, f.store.Set(ctx, shared.KeySessionToken, tok))
				require.NoError(t, f.store.Set(ctx, shared.KeySessionUser, user))
			}

			ok, err := f.svc.Restore(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.restored, ok)
			assert.Equal(t, tt.restored, f.session.LoggedIn())
			if tt.restored {
				u, _ := f.session.User()
				assert.Equal(t, "Saved", u.Name)
				return
			}
			_, stored := storedValue(t, f.store, shared.KeySessionToken)
			assert.False(t, stored)
		})
	}
}

func TestAuthService_HandleUnauthorized(t *testing.T) {
	f := setup(t)
	ctx := testutil.Context(t)
	require.NoError(t, f.store.Set(ctx, shared.KeySessionToken, "stale"))
	ok, err := f.svc.Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	assert.False(t, f.svc.HandleUnauthorized(ctx, errors.New("boom")))

	// the backend only accepts the admin token, so the stale one is rejected
	client := apitest.NewClient(t, f.backend.BaseURL(), f.session)
	_, err = client.Customers(ctx)
	require.Error(t, err)
	assert.True(t, f.svc.HandleUnauthorized(ctx, err))
	assert.False(t, f.session.LoggedIn())
	assert.Equal(t, []string{"Session expired, please log in again"}, f.notes.Texts())
}
