package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/brewflow-storefront/internal/infrastructure/backend"
	"github.com/your-org/brewflow-storefront/internal/pkg/apperr"
	"github.com/your-org/brewflow-storefront/internal/pkg/auth"
	"github.com/your-org/brewflow-storefront/internal/pkg/logger"
	"github.com/your-org/brewflow-storefront/internal/pkg/persistence"
)

type fixture struct {
	svc   *Service
	store *persistence.MemoryStore
	calls *int32
}

func newFixture(t *testing.T, handler http.HandlerFunc) fixture {
	t.Helper()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	store := persistence.NewMemoryStore()
	client := backend.New(srv.URL, time.Second, srv.Client(), logger.Discard())
	return fixture{
		svc:   NewService(client, store, auth.NewPasswordPolicy(6), logger.Discard()),
		store: store,
		calls: &calls,
	}
}

func token(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleAdmin, ParseRole(" Admin "))
	assert.Equal(t, RoleCustomer, ParseRole(""))
	assert.Equal(t, RoleCustomer, ParseRole("root"))
	assert.True(t, RoleAdmin.IsAdmin())
}

func TestLoginStoresToken(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, LoginRequest{Email: "a@b.c", Password: "pw", Role: RoleAdmin}, req)

		_, _ = w.Write([]byte(`{"token":"tok-1"}`))
	})

	require.NoError(t, f.svc.Login(t.Context(), LoginRequest{Email: " a@b.c ", Password: "pw"}))

	stored, err := f.store.Get(t.Context(), persistence.KeyAdminToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", stored)
}

func TestLoginFailureUsesBackendMessage(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
	})

	err := f.svc.Login(t.Context(), LoginRequest{Email: "a@b.c", Password: "bad"})
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", apperr.MessageOf(err))
	assert.Zero(t, f.store.Len())
}

func TestLocalValidationMakesNoCalls(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx := t.Context()

	cases := map[string]error{
		"login":           f.svc.Login(ctx, LoginRequest{Email: "", Password: "x"}),
		"forgot":          f.svc.ForgotPassword(ctx, " "),
		"reset no token":  f.svc.ResetPassword(ctx, "", "secret1", "secret1"),
		"reset blank":     f.svc.ResetPassword(ctx, "rt", "", ""),
		"reset mismatch":  f.svc.ResetPassword(ctx, "rt", "secret1", "secret2"),
		"reset too short": f.svc.ResetPassword(ctx, "rt", "abc", "abc"),
		"change blank":    f.svc.ChangePassword(ctx, "", "secret1", "secret1"),
		"change mismatch": f.svc.ChangePassword(ctx, "old", "secret1", "secret2"),
	}
	for name, err := range cases {
		assert.True(t, apperr.Is(err, apperr.KindValidation), name)
	}
	assert.Equal(t, "New passwords do not match.", apperr.MessageOf(cases["change mismatch"]))
	assert.Zero(t, atomic.LoadInt32(f.calls))
}

func TestChangePasswordWithoutTokenIsUnauthorized(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})

	err := f.svc.ChangePassword(t.Context(), "old", "secret1", "secret1")
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))
	assert.Zero(t, atomic.LoadInt32(f.calls))
}

func TestChangePassword(t *testing.T) {
	tok := token(t, time.Now().Add(time.Hour))
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/change-password", r.URL.Path)
		assert.Equal(t, "Bearer "+tok, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"oldPassword": "old", "newPassword": "secret1"}, body)
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})
	require.NoError(t, f.store.Set(t.Context(), persistence.KeyAdminToken, tok))

	require.NoError(t, f.svc.ChangePassword(t.Context(), "old", "secret1", "secret1"))
}

func TestRejectedTokenIsCleared(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	require.NoError(t, f.store.Set(t.Context(), persistence.KeyAdminToken, "opaque"))

	err := f.svc.ChangePassword(t.Context(), "old", "secret1", "secret1")
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))
	assert.Equal(t, MsgReauth, apperr.MessageOf(err))

	_, err = f.store.Get(t.Context(), persistence.KeyAdminToken)
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestExpiredTokenIsTreatedAsMissing(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	require.NoError(t, f.store.Set(t.Context(), persistence.KeyAdminToken, token(t, time.Now().Add(-time.Hour))))

	_, err := f.svc.Token(t.Context())
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))
	assert.Zero(t, f.store.Len())
}

func TestTokenAndLogout(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx := t.Context()

	_, err := f.svc.Token(ctx)
	assert.Equal(t, MsgTokenMissing, apperr.MessageOf(err))

	valid := token(t, time.Now().Add(time.Hour))
	require.NoError(t, f.store.Set(ctx, persistence.KeyAdminToken, valid))
	got, err := f.svc.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, valid, got)

	require.NoError(t, f.svc.Logout(ctx))
	_, err = f.svc.Token(ctx)
	assert.Error(t, err)
}

func TestResetAndForgot(t *testing.T) {
	var paths []string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})
	ctx := t.Context()

	require.NoError(t, f.svc.ForgotPassword(ctx, "admin@brewflow.test"))
	require.NoError(t, f.svc.ResetPassword(ctx, "rt", "secret1", "secret1"))
	assert.Equal(t, []string{"/api/auth/forgot-password", "/api/auth/update-password"}, paths)
}
