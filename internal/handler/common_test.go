package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/apperr"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestFailMapsTaxonomyToStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperr.Validation("bad"), http.StatusBadRequest},
		{"permission", apperr.Permission("no"), http.StatusForbidden},
		{"not found", apperr.NotFound("gone"), http.StatusNotFound},
		{"conflict", apperr.Conflict("dup"), http.StatusConflict},
		{"limit", apperr.LimitExceeded("full"), http.StatusUnprocessableEntity},
		{"timeout", apperr.Timeout("slow"), http.StatusGatewayTimeout},
		{"transport", apperr.Transport("down"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestContext(t)
			require.NoError(t, fail(c, tt.err))
			require.Equal(t, tt.status, rec.Code)
			require.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestFailHidesInternalDetail(t *testing.T) {
	c, rec := newTestContext(t)
	require.NoError(t, fail(c, errors.New("pq: password authentication failed")))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "password")
	require.Contains(t, rec.Body.String(), "internal error")
}

func TestPathIDParsing(t *testing.T) {
	c, _ := newTestContext(t)
	c.SetParamNames("id")
	c.SetParamValues("42")
	id, err := pathID(c)
	require.NoError(t, err)
	require.EqualValues(t, 42, id)

	c.SetParamValues("not-a-number")
	_, err = pathID(c)
	require.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestQueryOrgID(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/?org_id=7", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	id, err := queryOrgID(c)
	require.NoError(t, err)
	require.EqualValues(t, 7, id)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	id, err = queryOrgID(c)
	require.NoError(t, err)
	require.Zero(t, id)

	// a malformed filter must abort the request, not widen the view
	req = httptest.NewRequest(http.MethodGet, "/?org_id=abc", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	_, err = queryOrgID(c)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	req = httptest.NewRequest(http.MethodGet, "/?org_id=-1", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	_, err = queryOrgID(c)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
