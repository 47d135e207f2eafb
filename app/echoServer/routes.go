package echoServer

import (
	"github.com/labstack/echo/v4"

	"github.com/mityuk17/library-service-api/app/echoServer/controller/admin"
	"github.com/mityuk17/library-service-api/app/echoServer/controller/auth"
	"github.com/mityuk17/library-service-api/app/echoServer/controller/book"
	"github.com/mityuk17/library-service-api/app/echoServer/controller/librarian"
	"github.com/mityuk17/library-service-api/app/echoServer/controller/user"
	"github.com/mityuk17/library-service-api/model"
	authsvc "github.com/mityuk17/library-service-api/service/auth"
)

type C struct {
	Auth      *auth.Controller
	Book      *book.Controller
	Librarian *librarian.Controller
	User      *user.Controller
	Admin     *admin.Controller

	Gate      authsvc.Service
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/authorization/token", c.Auth.Token)

	// Book reads need no role
	books := e.Group("/v1/books")
	books.GET("", c.Book.List)
	books.GET("/:id", c.Book.Detail)
	books.GET("/author/:id", c.Book.ByAuthor)
	books.GET("/publisher/:id", c.Book.ByPublisher)
	books.GET("/genre/:id", c.Book.ByGenre)

	// Librarian: book lifecycle
	lib := e.Group("/v1/librarian", JWT(c.JWTSecret), RequireRole(c.Gate, model.RoleLibrarian))
	lib.POST("/books", c.Book.Create)
	lib.PUT("/books", c.Book.Update)
	lib.DELETE("/books/:id", c.Book.Delete)
	lib.GET("/give_book", c.Librarian.Give)
	lib.GET("/take_book", c.Librarian.Take)

	// User: reservations
	usr := e.Group("/v1/user", JWT(c.JWTSecret), RequireRole(c.Gate, model.RoleUser))
	usr.GET("/reserve_book/:id", c.User.Reserve)
	usr.GET("/unreserve_book/:id", c.User.Unreserve)

	// Admin: account management
	adm := e.Group("/v1/admin", JWT(c.JWTSecret), RequireRole(c.Gate, model.RoleAdmin))
	adm.GET("/users", c.Admin.List)
	adm.POST("/users", c.Admin.Create)
	adm.PUT("/users", c.Admin.Update)
	adm.GET("/users/:id", c.Admin.Get)
	adm.DELETE("/users/:id", c.Admin.Delete)
}
