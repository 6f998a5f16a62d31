package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/apperr"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/store"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/logger"
)

// TeamHandler serves the team management endpoints.
type TeamHandler struct {
	users *store.UserDirectory
}

// NewTeamHandler wires the handler.
func NewTeamHandler(users *store.UserDirectory) *TeamHandler {
	return &TeamHandler{users: users}
}

// List returns the members of the caller's organization. Superadmin may
// pass ?org_id= to inspect any organization.
func (h *TeamHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	orgID, err := queryOrgID(c)
	if err != nil {
		return fail(c, err)
	}
	members, err := h.users.ListTeam(c.Request().Context(), p, orgID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, members)
}

// Invite creates a new member in the caller's organization.
func (h *TeamHandler) Invite(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req store.InviteInput
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}

	orgID, err := queryOrgID(c)
	if err != nil {
		return fail(c, err)
	}
	member, err := h.users.Invite(c.Request().Context(), p, orgID, req)
	if err != nil {
		return fail(c, err)
	}

	logger.FromEcho(c).Info("team member invited",
		zap.Uint("user_id", member.ID),
		zap.String("email", member.Email),
		zap.String("role", string(member.Role)))
	return c.JSON(http.StatusCreated, member)
}

// AssignRole changes a member's role.
func (h *TeamHandler) AssignRole(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}

	member, err := h.users.AssignRole(c.Request().Context(), p, id, req.Role)
	if err != nil {
		return fail(c, err)
	}

	logger.FromEcho(c).Info("team member role changed",
		zap.Uint("user_id", member.ID),
		zap.String("role", string(member.Role)))
	return c.JSON(http.StatusOK, member)
}

// Remove deletes a member's profile. Self-removal and superadmin removal
// are denied.
func (h *TeamHandler) Remove(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}

	if err := h.users.Remove(c.Request().Context(), p, id); err != nil {
		return fail(c, err)
	}

	logger.FromEcho(c).Info("team member removed", zap.Uint("user_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Team member removed successfully"})
}
