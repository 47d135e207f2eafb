package librarian

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	reservationsvc "github.com/mityuk17/library-service-api/service/reservation"
)

type Controller struct {
	Svc reservationsvc.Service
	Log *slog.Logger
}

// GET /v1/librarian/give_book?book_id=&user_id=  (librarian)
func (h *Controller) Give(c echo.Context) error {
	bookID, err := queryID(c, "book_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book_id"})
	}
	userID, err := queryID(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user_id"})
	}

	if err := h.Svc.Give(c.Request().Context(), bookID, userID); err != nil {
		return h.fail(c, "give", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"result": true})
}

// GET /v1/librarian/take_book?book_id=  (librarian)
func (h *Controller) Take(c echo.Context) error {
	bookID, err := queryID(c, "book_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book_id"})
	}

	if err := h.Svc.Take(c.Request().Context(), bookID); err != nil {
		return h.fail(c, "take", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"result": true})
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch reservationsvc.Code(err) {
	case reservationsvc.ErrBookNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case reservationsvc.ErrUserNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	case reservationsvc.ErrReservedByOther:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "book is reserved by other user"})
	case reservationsvc.ErrOutOfStock:
		return c.JSON(http.StatusConflict, echo.Map{"message": "book is not in stock"})
	case reservationsvc.ErrAlreadyInStock:
		return c.JSON(http.StatusConflict, echo.Map{"message": "book is already in stock"})
	case reservationsvc.ErrStaleWrite:
		return c.JSON(http.StatusConflict, echo.Map{"message": "conflicting update, try again"})
	default:
		h.Log.Error(op+" error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

func queryID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.QueryParam(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.ErrBadRequest
	}
	return id, nil
}
