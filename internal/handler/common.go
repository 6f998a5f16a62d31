package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/apperr"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/authz"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/middleware"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/logger"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/prometheus"
)

// principal pulls the authenticated principal from the request. Handlers
// behind the auth middleware can rely on it being present.
func principal(c echo.Context) (authz.Principal, error) {
	p, ok := middleware.PrincipalFromEcho(c)
	if !ok {
		return authz.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return p, nil
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, apperr.Validation("invalid id")
	}
	return uint(id), nil
}

// queryOrgID parses the optional ?org_id= filter used by superadmin. A
// malformed value is rejected rather than silently widening the query to
// the caller's default view.
func queryOrgID(c echo.Context) (uint, error) {
	raw := c.QueryParam("org_id")
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperr.Validation("invalid org_id")
	}
	return uint(id), nil
}

// errorCounterType maps the taxonomy to the metric label.
var errorCounterType = map[apperr.Kind]string{
	apperr.KindValidation:    "validation",
	apperr.KindPermission:    "permission",
	apperr.KindNotFound:      "not_found",
	apperr.KindConflict:      "conflict",
	apperr.KindLimitExceeded: "limit_exceeded",
	apperr.KindTimeout:       "timeout",
	apperr.KindTransport:     "transport",
}

// fail translates a store error to the HTTP response and records it. Every
// mutating operation either fully succeeds or comes through here with a
// human-readable message.
func fail(c echo.Context, err error) error {
	log := logger.FromEcho(c)

	kind := apperr.KindOf(err)
	label, ok := errorCounterType[kind]
	if !ok {
		label = "internal"
	}
	prometheus.RecordError(label)

	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
		return c.JSON(status, echo.Map{"error": "internal error"})
	}

	log.Warn("request rejected", zap.Int("status", status), zap.Error(err))
	return c.JSON(status, echo.Map{"error": err.Error()})
}
