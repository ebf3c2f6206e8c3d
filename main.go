// Package main library API.
//
// @title           Library Management API
// @version         1.0
// @description     Library service (catalog, loans, users, auth).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"librarymgmt/app/echoServer"
	authctrl "librarymgmt/app/echoServer/controller/auth"
	bookctrl "librarymgmt/app/echoServer/controller/book"
	borrowctrl "librarymgmt/app/echoServer/controller/borrow"
	userctrl "librarymgmt/app/echoServer/controller/user"
	"librarymgmt/app/echoServer/validation"
	"librarymgmt/config"
	bookrepo "librarymgmt/repository/book"
	borrowrepo "librarymgmt/repository/borrow"
	openlibraryrepo "librarymgmt/repository/openlibrary"
	userrepo "librarymgmt/repository/user"
	authsvc "librarymgmt/service/auth"
	booksvc "librarymgmt/service/book"
	borrowsvc "librarymgmt/service/borrow"
	usersvc "librarymgmt/service/user"
	"librarymgmt/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, log); err != nil {
		os.Exit(1)
	}

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	rr := borrowrepo.New(db)
	olr := openlibraryrepo.NewHTTP(cfg.OpenLibraryBaseURL)

	// services
	as := authsvc.New(ur, cfg.JWTSecret, cfg.JWTTTLHours)
	bs := booksvc.New(br, olr)
	ws := borrowsvc.New(rr, log)
	us := usersvc.New(ur)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	borrowC := &borrowctrl.Controller{Svc: ws, V: v, Log: log}
	userC := &userctrl.Controller{Svc: us, V: v, Log: log}

	// echo
	e := echo.New()
	e.HideBanner = true
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:      authC,
		Book:      bookC,
		Borrow:    borrowC,
		User:      userC,
		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
