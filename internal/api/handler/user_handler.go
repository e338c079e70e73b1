package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/api/middleware"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/domain"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/ports"
)

// UserHandler handles registration, user management and device revocation.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Setup reports whether the installation has no users yet.
//
// @Summary      Bootstrap status
// @Tags         users
// @Produce      json
// @Success      200  {object}  setupResponse
// @Router       /setup [get]
func (h *UserHandler) Setup(c echo.Context) error {
	needs, err := h.service.NeedsSetup(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, setupResponse{NeedsSetup: needs})
}

// List handles GET /api/users.
//
// @Summary      List users of the caller's center
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      401  {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	users, err := h.service.ListUsers(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}

// Create handles POST /api/users. Anonymous callers register a new center;
// an authenticated admin adds a user to its own center.
//
// @Summary      Register or add a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "User"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]string  "validation error, taken username (with suggestions) or taken center"
// @Failure      403   {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var actor *domain.Actor
	if u := middleware.UserFrom(c); u != nil {
		a := domain.ActorOf(u)
		actor = &a
	}

	user, err := h.service.CreateUser(c.Request().Context(), actor, toCreateUserInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Update handles PUT /api/users/:id.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.UpdateUser(c.Request().Context(), actor, c.Param("id"), toUpdateUserInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Delete handles DELETE /api/users/:id.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteUser(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "user deleted"})
}

// RemoveDevice handles DELETE /api/users/:userId/devices/:deviceId. The token
// bound to the removed device stops working immediately.
//
// @Summary      Revoke a login device
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userId    path      string  true  "User ID"
// @Param        deviceId  path      string  true  "Device ID"
// @Success      200       {object}  userResponse
// @Failure      403       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /users/{userId}/devices/{deviceId} [delete]
func (h *UserHandler) RemoveDevice(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	user, err := h.service.RemoveDevice(c.Request().Context(), actor, c.Param("userId"), c.Param("deviceId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}
