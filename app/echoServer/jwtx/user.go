package jwtx

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// Accessors for the identity the auth middleware stored on the context.

func UserIDFromContext(c echo.Context) (int64, error) {
	if id, ok := c.Get("user_id").(int64); ok && id > 0 {
		return id, nil
	}
	return 0, errors.New("no user id in context")
}

func RoleFromContext(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

func EmailFromContext(c echo.Context) (string, error) {
	if s, ok := c.Get("email").(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("no email in context")
}
