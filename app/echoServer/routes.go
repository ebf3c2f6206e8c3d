package echoServer

import (
	"net/http"

	"librarymgmt/app/echoServer/controller/auth"
	"librarymgmt/app/echoServer/controller/book"
	"librarymgmt/app/echoServer/controller/borrow"
	"librarymgmt/app/echoServer/controller/user"
	"librarymgmt/util/permission"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth      *auth.Controller
	Book      *book.Controller
	Borrow    *borrow.Controller
	User      *user.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/auth/register", c.Auth.Register)
	pub.POST("/auth/login", c.Auth.Login)
	pub.GET("/auth/verify-token", c.Auth.VerifyToken)

	// Auth
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization:Bearer ",
	}))
	authed.Use(extractIdentity)

	// Books
	authed.GET("/books", c.Book.List, RequirePermission(permission.ViewBooks))
	authed.GET("/books/search", c.Book.Search, RequirePermission(permission.ViewBooks))
	authed.GET("/books/lookup", c.Book.RemoteSearch, RequirePermission(permission.ViewBooks))
	authed.GET("/books/lookup/:key", c.Book.Lookup, RequirePermission(permission.ViewBooks))
	authed.GET("/books/:id", c.Book.Detail, RequirePermission(permission.ViewBooks))
	authed.POST("/books", c.Book.Create, RequirePermission(permission.ManageBooks))
	authed.PUT("/books/:id", c.Book.Update, RequirePermission(permission.ManageBooks))
	authed.DELETE("/books/:id", c.Book.Delete, RequirePermission(permission.ManageBooks))

	// Borrows
	authed.POST("/borrows/borrow", c.Borrow.Borrow, RequirePermission(permission.BorrowBooks))
	authed.PATCH("/borrows/:id/return", c.Borrow.Return, RequirePermission(permission.ManageBorrows))
	authed.GET("/borrows", c.Borrow.List, RequirePermission(permission.ManageBorrows))
	authed.GET("/borrows/my", c.Borrow.MyHistory, RequirePermission(permission.BorrowBooks))
	authed.DELETE("/borrows/:id", c.Borrow.Delete, RequirePermission(permission.ManageBorrows))

	// Users
	authed.GET("/users", c.User.List, RequirePermission(permission.ViewUsers))
	authed.GET("/users/me", c.User.Me)
	authed.PUT("/users/me", c.User.UpdateMe)
	authed.PATCH("/users/:id/role", c.User.UpdateRole, RequirePermission(permission.ManageUsers))
	authed.PATCH("/users/:id/status", c.User.UpdateStatus, RequirePermission(permission.ManageUsers))
}

// extractIdentity copies sub/email/role out of the token the echo-jwt
// middleware already verified.
func extractIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenObj := c.Get("user")
		claims, ok := tokenObj.(jwt.MapClaims)
		if !ok {
			if tok, isTok := tokenObj.(*jwt.Token); isTok {
				claims, ok = tok.Claims.(jwt.MapClaims)
			}
		}
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}

		sub, ok := claims["sub"].(float64)
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}
		c.Set("user_id", int64(sub))
		if email, ok := claims["email"].(string); ok {
			c.Set("email", email)
		}
		if role, ok := claims["role"].(string); ok {
			c.Set("role", role)
		}
		return next(c)
	}
}
