package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/require"

	"github.com/yichen-lab/congee-pos/internal/common"
)

func newTestService(t *testing.T, now func() time.Time) *Service {
	t.Helper()
	hash, err := argon2id.CreateHash("2468", argon2id.DefaultParams)
	require.NoError(t, err)
	svc, err := NewService(Config{
		Secret:         "test-secret-at-least-32-bytes-long!!",
		OwnerPINHash:   hash,
		AccessTokenTTL: time.Hour,
		ClockSkew:      30 * time.Second,
		Now:            now,
	})
	require.NoError(t, err)
	return svc
}

func TestLoginIssuesOwnerToken(t *testing.T) {
	svc := newTestService(t, nil)

	result, err := svc.Login(context.Background(), "2468")
	require.NoError(t, err)
	require.Equal(t, RoleOwner, result.Role)
	require.NotEmpty(t, result.AccessToken)

	role, err := svc.ParseAccessToken(result.AccessToken)
	require.NoError(t, err)
	require.Equal(t, RoleOwner, role)
}

func TestLoginRejectsWrongPIN(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Login(context.Background(), "0000")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)

	_, err = svc.Login(context.Background(), "")
	require.Error(t, err)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	issued := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	clock := issued
	svc := newTestService(t, func() time.Time { return clock })

	result, err := svc.Login(context.Background(), "2468")
	require.NoError(t, err)

	clock = issued.Add(2 * time.Hour)
	_, err = svc.ParseAccessToken(result.AccessToken)
	require.Error(t, err)
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.ParseAccessToken("not-a-token")
	require.Error(t, err)

	_, err = svc.ParseAccessToken("")
	require.Error(t, err)
}

func TestRequireOwnerMiddleware(t *testing.T) {
	svc := newTestService(t, nil)
	mw := Middleware{Service: svc}

	var sawRole string
	protected := mw.RequireOwner(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawRole, _ = common.DeviceRole(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	result, err := svc.Login(context.Background(), "2468")
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)
	req.Header.Set("Authorization", "Bearer "+result.AccessToken)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, RoleOwner, sawRole)
}

func TestLoginHandler(t *testing.T) {
	svc := newTestService(t, nil)
	h := Handler{Svc: svc}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"pin":"2468"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"pin":"1111"}`))
	rec = httptest.NewRecorder()
	h.Login(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
