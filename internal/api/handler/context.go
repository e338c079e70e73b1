package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/api/middleware"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/domain"
)

// ctxActor returns the authenticated caller injected by the Auth middleware.
// A missing user means the route was registered without Auth.
func ctxActor(c echo.Context) (domain.Actor, error) {
	u := middleware.UserFrom(c)
	if u == nil {
		return domain.Actor{}, domain.ErrUnauthenticated
	}
	return domain.ActorOf(u), nil
}

// bindAndValidate decodes the request body into req and runs the registered
// validator over it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Invalid("invalid payload")
	}
	if c.Echo().Validator != nil {
		if err := c.Validate(req); err != nil {
			return err
		}
	}
	return nil
}
