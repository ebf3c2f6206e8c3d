package echoServer

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"librarymgmt/util/permission"
)

func doWithRole(t *testing.T, role string, p permission.Permission) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set("role", role)
	}

	h := RequirePermission(p)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec
}

func TestRequirePermission_Allows(t *testing.T) {
	rec := doWithRole(t, "librarian", permission.ManageBorrows)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequirePermission_WildcardAllows(t *testing.T) {
	rec := doWithRole(t, "admin", permission.ManageBooks)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequirePermission_DeniesRole(t *testing.T) {
	rec := doWithRole(t, "user", permission.ManageBorrows)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequirePermission_DeniesMissingRole(t *testing.T) {
	rec := doWithRole(t, "", permission.ViewBooks)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
