// Package main library service API.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mityuk17/library-service-api/app/echoServer"
	adminctrl "github.com/mityuk17/library-service-api/app/echoServer/controller/admin"
	authctrl "github.com/mityuk17/library-service-api/app/echoServer/controller/auth"
	bookctrl "github.com/mityuk17/library-service-api/app/echoServer/controller/book"
	librarianctrl "github.com/mityuk17/library-service-api/app/echoServer/controller/librarian"
	userctrl "github.com/mityuk17/library-service-api/app/echoServer/controller/user"
	"github.com/mityuk17/library-service-api/app/echoServer/validation"
	"github.com/mityuk17/library-service-api/config"
	bookrepo "github.com/mityuk17/library-service-api/repository/book"
	refdatarepo "github.com/mityuk17/library-service-api/repository/refdata"
	userrepo "github.com/mityuk17/library-service-api/repository/user"
	authsvc "github.com/mityuk17/library-service-api/service/auth"
	booksvc "github.com/mityuk17/library-service-api/service/book"
	refdatasvc "github.com/mityuk17/library-service-api/service/refdata"
	reservationsvc "github.com/mityuk17/library-service-api/service/reservation"
	usersvc "github.com/mityuk17/library-service-api/service/user"
	"github.com/mityuk17/library-service-api/util/database"
	"github.com/mityuk17/library-service-api/util/mail"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB: pgx pool
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	br := bookrepo.New(db)
	ur := userrepo.New(db)
	rr := refdatarepo.New(db)

	// services
	gate := authsvc.New(ur, cfg.JWTSecret, cfg.TokenTTL)
	refs := refdatasvc.New(rr)
	bs := booksvc.New(br, refs)
	rs := reservationsvc.New(br, ur, cfg.ReservationTTL, reservationsvc.SystemClock())
	notifier := mail.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPLogin, cfg.SMTPPassword)
	us := usersvc.New(ur, notifier, log)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: gate, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	librarianC := &librarianctrl.Controller{Svc: rs, Log: log}
	userC := &userctrl.Controller{Svc: rs, Log: log}
	adminC := &adminctrl.Controller{Svc: us, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	echoServer.Register(e, echoServer.C{
		Auth:      authC,
		Book:      bookC,
		Librarian: librarianC,
		User:      userC,
		Admin:     adminC,

		Gate:      gate,
		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
