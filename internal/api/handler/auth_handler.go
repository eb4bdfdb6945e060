package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spendline/expense-approval/internal/core/domain"
	"github.com/spendline/expense-approval/internal/core/ports"
)

type AuthHandler struct {
	identity ports.IdentityService
}

func NewAuthHandler(identity ports.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

type credentialsRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type principalResponse struct {
	UserID    string  `json:"user_id"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	CompanyID string  `json:"company_id"`
	ManagerID *string `json:"manager_id"`
}

type registerResponse struct {
	Principal      principalResponse `json:"principal"`
	CompanyCreated bool              `json:"company_created"`
}

type loginResponse struct {
	Token     string            `json:"token"`
	Principal principalResponse `json:"principal"`
}

func toPrincipalResponse(p domain.Principal) principalResponse {
	return principalResponse{
		UserID:    p.UserID,
		Email:     p.Email,
		Role:      string(p.Role),
		CompanyID: p.CompanyID,
		ManagerID: p.ManagerID,
	}
}

// Register creates identity-provider credentials. An address an Admin has
// invited joins that tenant; any other address signs up a new company.
//
// @Summary      Register credentials
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Email and password"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	reg, err := h.identity.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{
		Principal:      toPrincipalResponse(reg.Principal),
		CompanyCreated: reg.CompanyCreated,
	})
}

// Login authenticates and returns a JWT.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return domain.ErrInvalidCredentials
	}

	token, p, err := h.identity.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{Token: token, Principal: toPrincipalResponse(*p)})
}

// Me returns the caller's resolved principal and capabilities.
//
// @Summary      Current principal
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meResponse{
		principalResponse: toPrincipalResponse(p),
		Capabilities: capabilities{
			Override:    p.Role.CanOverride(),
			ManageUsers: p.Role.CanManageUsers(),
			ViewCompany: p.Role.CanViewCompany(),
			Approve:     p.Role.CanManage(),
		},
	})
}

type capabilities struct {
	Override    bool `json:"override"`
	ManageUsers bool `json:"manage_users"`
	ViewCompany bool `json:"view_company"`
	Approve     bool `json:"approve"`
}

type meResponse struct {
	principalResponse
	Capabilities capabilities `json:"capabilities"`
}
