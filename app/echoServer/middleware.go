// app/echoServer/middleware.go
package echoServer

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mityuk17/library-service-api/app/echoServer/jwtx"
	"github.com/mityuk17/library-service-api/model"
	authsvc "github.com/mityuk17/library-service-api/service/auth"
)

func RegisterMiddlewares(e *echo.Echo) {

	e.Use(middleware.Recover())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))

	e.Use(Slog())
}

func Slog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			lat := time.Since(start).Milliseconds()

			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			slog.Info("http",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", lat,
				"req_id", rid,
				"ip", c.RealIP(),
			)
			return err
		}
	}
}

// JWT validates the bearer token's signature and expiry. Who the bearer is
// and what they may do is decided per route group by RequireRole.
func JWT(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
	})
}

// RequireRole resolves the principal behind the token subject and enforces
// an exact role match before the handler runs.
func RequireRole(gate authsvc.Service, role model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			login, err := jwtx.LoginFromContext(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}

			u, err := gate.Authorize(c.Request().Context(), login, role)
			switch {
			case err == nil:
				jwtx.SetPrincipal(c, u)
				return next(c)
			case errors.Is(err, authsvc.ErrForbidden):
				return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
			case errors.Is(err, authsvc.ErrUnauthorized):
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			default:
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
			}
		}
	}
}
