package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/apperr"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/identity"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/store"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/jwtutil"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/logger"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/prometheus"
)

// AuthHandler serves login, onboarding and profile endpoints.
type AuthHandler struct {
	idp       identity.Provider
	users     *store.UserDirectory
	onboarder *store.Onboarder
	jwt       *jwtutil.JWTUtil
}

// NewAuthHandler wires the handler.
func NewAuthHandler(idp identity.Provider, users *store.UserDirectory, onboarder *store.Onboarder, jwt *jwtutil.JWTUtil) *AuthHandler {
	return &AuthHandler{idp: idp, users: users, onboarder: onboarder, jwt: jwt}
}

// Login authenticates credentials and issues a token carrying the profile's
// organization and role.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}

	ctx := c.Request().Context()
	principal, err := h.idp.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		log.Warn("login failed", zap.String("email", req.Email))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	user, err := h.users.ResolveProfile(ctx, principal.ID)
	if err != nil {
		// authenticated principal without a profile is an inconsistent
		// state, surfaced loudly rather than papered over
		log.Error("authenticated principal has no profile",
			zap.String("principal_id", principal.ID),
			zap.String("email", principal.Email))
		return fail(c, err)
	}

	orgName := h.users.OrgName(ctx, user)

	token, err := h.jwt.GenerateTokenWithOrg(user.Email, user.ID, string(user.Role), user.OrgID, orgName)
	if err != nil {
		log.Error("failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}
	prometheus.TokensIssuedCounter.Inc()

	log.Info("user logged in",
		zap.String("email", user.Email),
		zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  user,
	})
}

// Register runs the onboarding saga: principal, organization, linked admin
// profile and seeded metrics.
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromEcho(c)

	var req store.OnboardingInput
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}

	result, err := h.onboarder.Onboard(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}

	log.Info("account registered",
		zap.String("email", req.Email),
		zap.Uint("org_id", result.Organization.ID))
	return c.JSON(http.StatusCreated, echo.Map{
		"message":      "Account created successfully",
		"organization": result.Organization,
		"user":         result.User,
	})
}

// GetProfile returns the caller's profile row.
func (h *AuthHandler) GetProfile(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	user, err := h.users.GetByID(c.Request().Context(), p.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile mutates the caller's own profile fields.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var patch store.ProfilePatch
	if err := c.Bind(&patch); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), p, patch)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
