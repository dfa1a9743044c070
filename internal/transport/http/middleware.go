package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskloop/taskloop-api/internal/domain"
	"github.com/taskloop/taskloop-api/internal/service"
	"github.com/taskloop/taskloop-api/internal/util"
)

const (
	contextUserKey = "auth.user"

	// SessionCookieName is the cookie the original frontend sends with
	// credentials: "include"; the name is part of the API contract.
	SessionCookieName = "authorization"
)

// RequireAuth gates protected routes on a valid session cookie. No task
// data is reachable without passing it.
func RequireAuth(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, util.Fail("you are not logged in"))
			}
			user, err := auth.Authenticate(c.Request().Context(), cookie.Value)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, util.Fail("invalid or expired session"))
			}
			c.Set(contextUserKey, user)
			return next(c)
		}
	}
}

func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(contextUserKey).(*domain.User)
	return user, ok
}
