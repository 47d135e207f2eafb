package user

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mityuk17/library-service-api/app/echoServer/jwtx"
	reservationsvc "github.com/mityuk17/library-service-api/service/reservation"
)

type Controller struct {
	Svc reservationsvc.Service
	Log *slog.Logger
}

// GET /v1/user/reserve_book/:id  (user)
func (h *Controller) Reserve(c echo.Context) error {
	return h.run(c, "reserve", h.Svc.Reserve)
}

// GET /v1/user/unreserve_book/:id  (user)
func (h *Controller) Unreserve(c echo.Context) error {
	return h.run(c, "unreserve", h.Svc.Unreserve)
}

func (h *Controller) run(c echo.Context, op string, do func(ctx context.Context, bookID, userID int64) error) error {
	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || bookID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	principal, ok := jwtx.Principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	if err := do(c.Request().Context(), bookID, principal.ID); err != nil {
		switch reservationsvc.Code(err) {
		case reservationsvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case reservationsvc.ErrAlreadyReserved:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book is already reserved"})
		case reservationsvc.ErrNotReserved:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book is not reserved"})
		case reservationsvc.ErrReservedByOther:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "book is reserved by another user"})
		case reservationsvc.ErrOutOfStock:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book is not in stock"})
		case reservationsvc.ErrStaleWrite:
			return c.JSON(http.StatusConflict, echo.Map{"message": "conflicting update, try again"})
		default:
			h.Log.Error(op+" error", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"result": true})
}
