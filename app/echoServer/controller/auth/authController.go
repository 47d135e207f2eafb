package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	authsvc "github.com/mityuk17/library-service-api/service/auth"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type TokenReq struct {
	Login    string `json:"login" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// POST /v1/authorization/token
func (h *Controller) Token(c echo.Context) error {
	var req TokenReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid payload"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	tok, err := h.Svc.Login(c.Request().Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidCreds) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}
		h.Log.Error("login error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"access_token": tok, "token_type": "bearer"})
}
