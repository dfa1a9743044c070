package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskloop/taskloop-api/internal/domain"
	"github.com/taskloop/taskloop-api/internal/service"
	"github.com/taskloop/taskloop-api/internal/util"
)

type AuthHandler struct {
	auth         *service.AuthService
	cookieSecure bool
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService, cookieSecure bool) {
	handler := &AuthHandler{auth: auth, cookieSecure: cookieSecure}

	e.POST("/otps", handler.requestOTP)
	e.POST("/users/register", handler.register)
	e.POST("/users/login", handler.login)
	e.GET("/users/me", handler.me, RequireAuth(auth))
	// The SPA issues a POST on logout; keep both verbs working.
	e.GET("/users/logout", handler.logout, RequireAuth(auth))
	e.POST("/users/logout", handler.logout, RequireAuth(auth))
}

func (h *AuthHandler) requestOTP(c echo.Context) error {
	var req OTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid request body"))
	}

	if err := h.auth.RequestOTP(c.Request().Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, util.Fail(err.Error()))
		case errors.Is(err, service.ErrOTPRateLimited):
			return c.JSON(http.StatusTooManyRequests, util.Fail("an OTP was sent recently, please wait before requesting another"))
		case errors.Is(err, service.ErrMailDelivery):
			return c.JSON(http.StatusInternalServerError, util.Fail("could not send the OTP email"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Fail("something went wrong"))
		}
	}

	return c.JSON(http.StatusCreated, util.Success(util.Envelope{
		"message": "OTP sent to your email",
	}))
}

func (h *AuthHandler) register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid request body"))
	}

	user, err := h.auth.Register(c.Request().Context(), req.Email, req.Password, req.FullName, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, util.Fail(err.Error()))
		case errors.Is(err, service.ErrOTPMissingOrExpired):
			return c.JSON(http.StatusBadRequest, util.Fail("no valid OTP found for this email, request a new one"))
		case errors.Is(err, service.ErrOTPInvalid):
			return c.JSON(http.StatusBadRequest, util.Fail("incorrect OTP"))
		case errors.Is(err, service.ErrEmailTaken):
			return c.JSON(http.StatusBadRequest, util.Fail("email is already registered"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Fail("something went wrong"))
		}
	}

	return c.JSON(http.StatusCreated, util.Success(util.Envelope{
		"user": toAuthUser(user),
	}))
}

func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid request body"))
	}

	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, util.Fail(err.Error()))
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, util.Fail("incorrect email or password"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Fail("something went wrong"))
		}
	}

	c.SetCookie(h.sessionCookie(result.Token, result.ExpiresAt))

	return c.JSON(http.StatusOK, util.Success(util.Envelope{
		"user": toAuthUser(result.User),
	}))
}

func (h *AuthHandler) me(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Fail("you are not logged in"))
	}
	return c.JSON(http.StatusOK, util.Success(util.Envelope{
		"user": toAuthUser(user),
	}))
}

func (h *AuthHandler) logout(c echo.Context) error {
	cookie := h.sessionCookie("", time.Now().Add(-time.Hour))
	cookie.MaxAge = -1
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, util.Envelope{
		"status":  "success",
		"message": "logged out",
	})
}

// sessionCookie is HTTP-only and SameSite=Lax; Secure stays off unless
// configured, since deployments on a plain local network are supported.
func (h *AuthHandler) sessionCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cookieSecure,
	}
}

func toAuthUser(user *domain.User) AuthUser {
	return AuthUser{Email: user.Email, FullName: user.FullName}
}
