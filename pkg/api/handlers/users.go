package handlers

import (
	apimw "github.com/jordanlanch/printfast/pkg/api/middleware"
	"github.com/jordanlanch/printfast/pkg/api/response"
	"github.com/jordanlanch/printfast/pkg/models"
	"github.com/jordanlanch/printfast/pkg/users"
	"github.com/labstack/echo/v4"
)

// UserHandler handles profile and user management endpoints
type UserHandler struct {
	users *users.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *users.Service) *UserHandler {
	return &UserHandler{users: users}
}

// GetProfile godoc
// @Summary Own profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.UserResponse}
// @Router /users/profile [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	u, err := h.users.GetProfile(c.Request().Context(), apimw.ActorFrom(c))
	if err != nil {
		return err
	}
	return response.OK(c, u.ToResponse())
}

// UpdateProfile godoc
// @Summary Update own profile
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpdateUserRequest true "Changes"
// @Success 200 {object} response.Envelope{data=models.UserResponse}
// @Failure 409 {object} errors.ErrorResponse "Email already exists"
// @Router /users/profile [patch]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	u, err := h.users.UpdateProfile(c.Request().Context(), apimw.ActorFrom(c), req)
	if err != nil {
		return err
	}
	return response.Message(c, u.ToResponse(), "Profile updated successfully")
}

// List godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size (max 100)"
// @Param sort query string false "Sort field"
// @Param order query string false "asc or desc"
// @Param search query string false "Matches name or email"
// @Param role query string false "Role filter"
// @Param isActive query bool false "Active filter"
// @Success 200 {object} response.Envelope{data=models.ListResult[models.UserResponse]}
// @Router /users [get]
func (h *UserHandler) List(c echo.Context) error {
	var q models.UserListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	active, err := boolQuery(c, "isActive")
	if err != nil {
		return err
	}
	q.IsActive = active

	result, err := h.users.List(c.Request().Context(), apimw.ActorFrom(c), q)
	if err != nil {
		return err
	}
	return response.OK(c, result)
}

// Create godoc
// @Summary Create a user with a generated password
// @Description The generated password is returned once and never stored in plain text.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateUserRequest true "User"
// @Success 201 {object} response.Envelope{data=models.CreateUserResponse}
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req models.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	created, err := h.users.Create(c.Request().Context(), apimw.ActorFrom(c), req)
	if err != nil {
		return err
	}
	return response.Created(c, created, "User created successfully")
}

// Get godoc
// @Summary Get a user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope{data=models.UserResponse}
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	u, err := h.users.Get(c.Request().Context(), apimw.ActorFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, u.ToResponse())
}

// Update godoc
// @Summary Update a user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body models.UpdateUserRequest true "Changes"
// @Success 200 {object} response.Envelope{data=models.UserResponse}
// @Router /users/{id} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	u, err := h.users.Update(c.Request().Context(), apimw.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return response.Message(c, u.ToResponse(), "User updated successfully")
}

// Deactivate godoc
// @Summary Deactivate a user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope{data=models.UserResponse}
// @Router /users/{id}/deactivate [patch]
func (h *UserHandler) Deactivate(c echo.Context) error {
	u, err := h.users.Deactivate(c.Request().Context(), apimw.ActorFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return response.Message(c, u.ToResponse(), "User deactivated successfully")
}

// Activate godoc
// @Summary Activate a user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope{data=models.UserResponse}
// @Failure 409 {object} errors.ErrorResponse "An active god user already exists"
// @Router /users/{id}/activate [patch]
func (h *UserHandler) Activate(c echo.Context) error {
	u, err := h.users.Activate(c.Request().Context(), apimw.ActorFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return response.Message(c, u.ToResponse(), "User activated successfully")
}
