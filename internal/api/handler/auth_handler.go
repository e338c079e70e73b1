package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/api/middleware"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/domain"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates a user, registers the calling device and returns a JWT.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Username:  req.Username,
		Password:  req.Password,
		UserAgent: c.Request().UserAgent(),
		IP:        c.RealIP(),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Token:           res.Token,
		User:            toUserResponse(res.User),
		CurrentDeviceID: res.CurrentDeviceID,
	})
}

// Me returns the user the bearer token resolves to.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	u := middleware.UserFrom(c)
	if u == nil {
		return domain.ErrUnauthenticated
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}
