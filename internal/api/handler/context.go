package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/thynetwork/timeclock/internal/core/domain"
)

// principal extracts the identity injected by the Auth middleware and
// performs a fast-fail check before any service call: user_id and role must
// both be present, which proves the middleware ran on a usable token.
func principal(c echo.Context) (domain.Principal, error) {
	userID, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if userID == "" || role == "" {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	username, _ := c.Get("username").(string)
	return domain.Principal{UserID: userID, Username: username, Role: domain.Role(role)}, nil
}
