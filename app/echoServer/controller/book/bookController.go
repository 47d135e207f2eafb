package book

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/mityuk17/library-service-api/model"
	booksvc "github.com/mityuk17/library-service-api/service/book"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/librarian/books  (librarian)
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	b, err := h.Svc.Create(c.Request().Context(), booksvc.NewBook{
		Name:      req.Name,
		Author:    req.Author,
		Publisher: req.Publisher,
		Genre:     req.Genre,
	})
	if err != nil {
		switch {
		case errors.Is(err, booksvc.ErrBadInput):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		case errors.Is(err, booksvc.ErrNameTaken):
			return c.JSON(http.StatusConflict, echo.Map{"message": "book name already taken"})
		default:
			h.Log.Error("book create error", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, b)
}

// PUT /v1/librarian/books  (librarian)
func (h *Controller) Update(c echo.Context) error {
	var req UpdateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	patch := model.BookPatch{
		ID:          req.ID,
		Name:        req.Name,
		AuthorID:    req.AuthorID,
		PublisherID: req.PublisherID,
		GenreID:     req.GenreID,
	}
	if err := h.Svc.Update(c.Request().Context(), patch); err != nil {
		switch {
		case errors.Is(err, booksvc.ErrBookNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case errors.Is(err, booksvc.ErrNameTaken):
			return c.JSON(http.StatusConflict, echo.Map{"message": "book name already taken"})
		default:
			h.Log.Error("book update error", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"result": true})
}

// DELETE /v1/librarian/books/:id  (librarian)
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, booksvc.ErrBookNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		}
		h.Log.Error("book delete error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"result": true})
}

// GET /v1/books
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("book list error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	row, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, booksvc.ErrBookNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		}
		h.Log.Error("book detail error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, row)
}

// GET /v1/books/author/:id
func (h *Controller) ByAuthor(c echo.Context) error {
	return h.byRef(c, h.Svc.ByAuthor, "author not found")
}

// GET /v1/books/publisher/:id
func (h *Controller) ByPublisher(c echo.Context) error {
	return h.byRef(c, h.Svc.ByPublisher, "publisher not found")
}

// GET /v1/books/genre/:id
func (h *Controller) ByGenre(c echo.Context) error {
	return h.byRef(c, h.Svc.ByGenre, "genre not found")
}

func (h *Controller) byRef(c echo.Context, search func(ctx context.Context, id int64) ([]model.Book, error), notFound string) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	rows, err := search(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, booksvc.ErrRefNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": notFound})
		}
		h.Log.Error("book search error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
