// app/echoServer/jwtx/principal.go
package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/mityuk17/library-service-api/model"
)

const principalKey = "principal"

// LoginFromContext pulls the token subject the echo-jwt middleware stored.
func LoginFromContext(c echo.Context) (string, error) {
	tok, ok := c.Get("user").(*jwt.Token)
	if !ok || tok == nil {
		return "", errors.New("no jwt token in context")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid jwt claims")
	}
	if s, ok := claims["sub"].(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("sub missing in claims")
}

// SetPrincipal stores the authorized user for downstream handlers.
func SetPrincipal(c echo.Context, u *model.User) { c.Set(principalKey, u) }

// Principal returns the user the access gate resolved for this request.
func Principal(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(principalKey).(*model.User)
	return u, ok && u != nil
}
