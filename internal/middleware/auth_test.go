package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/model"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/jwtutil"
)

func newAuthTestServer(t *testing.T) (*echo.Echo, *jwtutil.JWTUtil) {
	t.Helper()
	j := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	e := echo.New()
	protected := e.Group("/api", JWTAuthMiddleware(j))
	protected.GET("/whoami", func(c echo.Context) error {
		p, ok := PrincipalFromEcho(c)
		require.True(t, ok)
		return c.JSON(http.StatusOK, echo.Map{"user_id": p.UserID, "role": string(p.Role)})
	})
	scoped := e.Group("/scoped", JWTAuthMiddleware(j), RequireOrgContext)
	scoped.GET("/ping", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return e, j
}

func doGet(e *echo.Echo, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthMiddleware(t *testing.T) {
	e, j := newAuthTestServer(t)

	org := uint(3)
	token, err := j.GenerateTokenWithOrg("vet@test.example", 5, "vet", &org, "Clinica")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(e, "/api/whoami", tt.header)
			require.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestJWTAuthMiddlewareRejectsUnknownRole(t *testing.T) {
	e, j := newAuthTestServer(t)

	token, err := j.GenerateToken("x@test.example", 1, "overlord")
	require.NoError(t, err)

	rec := doGet(e, "/api/whoami", "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthMiddlewareFoldsLegacyRole(t *testing.T) {
	e, j := newAuthTestServer(t)

	org := uint(1)
	token, err := j.GenerateTokenWithOrg("old@test.example", 2, "veterinario", &org, "")
	require.NoError(t, err)

	rec := doGet(e, "/api/whoami", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), string(model.RoleVet))
}

func TestRequireOrgContext(t *testing.T) {
	e, j := newAuthTestServer(t)

	org := uint(3)
	assigned, err := j.GenerateTokenWithOrg("a@test.example", 1, "admin", &org, "")
	require.NoError(t, err)
	unassigned, err := j.GenerateToken("b@test.example", 2, "colaborador")
	require.NoError(t, err)
	root, err := j.GenerateToken("root@test.example", 3, "superadmin")
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, doGet(e, "/scoped/ping", "Bearer "+assigned).Code)
	require.Equal(t, http.StatusForbidden, doGet(e, "/scoped/ping", "Bearer "+unassigned).Code)
	// superadmin needs no organization of its own
	require.Equal(t, http.StatusOK, doGet(e, "/scoped/ping", "Bearer "+root).Code)
}
