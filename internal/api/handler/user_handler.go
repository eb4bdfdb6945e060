package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/spendline/expense-approval/internal/core/domain"
	"github.com/spendline/expense-approval/internal/core/ports"
)

// UserHandler exposes the Admin-only user directory.
type UserHandler struct {
	directory ports.DirectoryService
}

func NewUserHandler(directory ports.DirectoryService) *UserHandler {
	return &UserHandler{directory: directory}
}

type addUserRequest struct {
	Email     string  `json:"email"      validate:"required,email"`
	Role      string  `json:"role"       validate:"required"`
	ManagerID *string `json:"manager_id"`
}

type changeRoleRequest struct {
	ID   string `param:"id"  json:"-" validate:"required"`
	Role string `json:"role"         validate:"required"`
}

// assignManagerRequest clears the manager when manager_id is null or absent.
type assignManagerRequest struct {
	ID        string  `param:"id"        json:"-" validate:"required"`
	ManagerID *string `json:"manager_id"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CompanyID string    `json:"company_id"`
	ManagerID *string   `json:"manager_id"`
	Linked    bool      `json:"linked"`
	CreatedAt time.Time `json:"created_at"`
}

type listUsersResponse struct {
	Data  []userResponse `json:"data"`
	Count int            `json:"count"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		CompanyID: u.CompanyID,
		ManagerID: u.ManagerID,
		Linked:    u.ExternalID != "",
		CreatedAt: u.CreatedAt.UTC(),
	}
}

func optionalID(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// Add handles POST /v1/users.
//
// @Summary      Invite a user into the caller's company (Admin)
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addUserRequest  true  "New member"
// @Success      201   {object}  userResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/users [post]
func (h *UserHandler) Add(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req addUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return err
	}

	user, err := h.directory.AddUser(c.Request().Context(), p, ports.AddUserInput{
		Email:     req.Email,
		Role:      role,
		ManagerID: optionalID(req.ManagerID),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// List handles GET /v1/users.
//
// @Summary      List the caller's company members (Admin)
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listUsersResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	users, err := h.directory.ListUsers(c.Request().Context(), p)
	if err != nil {
		return err
	}
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return c.JSON(http.StatusOK, listUsersResponse{Data: out, Count: len(out)})
}

// ChangeRole handles PATCH /v1/users/:id/role.
//
// @Summary      Change a member's role (Admin)
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      changeRoleRequest  true  "New role"
// @Success      200   {object}  userResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/users/{id}/role [patch]
func (h *UserHandler) ChangeRole(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req changeRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return err
	}

	user, err := h.directory.ChangeRole(c.Request().Context(), p, req.ID, role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// AssignManager handles PATCH /v1/users/:id/manager.
//
// @Summary      Assign or clear a member's manager (Admin)
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "User id"
// @Param        body  body      assignManagerRequest  true  "Manager id, or null to clear"
// @Success      200   {object}  userResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/users/{id}/manager [patch]
func (h *UserHandler) AssignManager(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req assignManagerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.directory.AssignManager(c.Request().Context(), p, req.ID, optionalID(req.ManagerID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}
