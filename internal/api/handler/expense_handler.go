package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/spendline/expense-approval/internal/core/domain"
	"github.com/spendline/expense-approval/internal/core/ports"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotency-Replayed"
	maxIdempotencyKey    = 128
)

// ExpenseHandler handles HTTP requests for the approval workflow.
type ExpenseHandler struct {
	service ports.ExpenseService
}

func NewExpenseHandler(service ports.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// Submit handles POST /v1/expenses.
//
// @Summary      Submit an expense for approval
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                false  "Replays of the same key return the original expense"
// @Param        body             body      submitExpenseRequest  true   "Expense details"
// @Success      201              {object}  expenseResponse
// @Success      200              {object}  expenseResponse  "Replay of an earlier submission"
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /v1/expenses [post]
func (h *ExpenseHandler) Submit(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req submitExpenseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	draft, err := toDraft(req)
	if err != nil {
		return err
	}

	key := strings.TrimSpace(c.Request().Header.Get(headerIdempotencyKey))
	if len(key) > maxIdempotencyKey {
		return echo.NewHTTPError(http.StatusBadRequest, "idempotency key too long")
	}

	result, err := h.service.SubmitExpense(c.Request().Context(), p, ports.SubmitExpenseInput{
		Draft:          draft,
		IdempotencyKey: key,
	})
	if err != nil {
		return err
	}

	if result.AlreadyExisted {
		c.Response().Header().Set(headerReplayed, "true")
		return c.JSON(http.StatusOK, toExpenseResponse(result.Expense))
	}
	c.Response().Header().Set(echo.HeaderLocation, "/v1/expenses/"+result.Expense.ID)
	return c.JSON(http.StatusCreated, toExpenseResponse(result.Expense))
}

// Decide handles POST /v1/expenses/:id/decision.
//
// @Summary      Approve or reject an expense as its current approver
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Expense id"
// @Param        body  body      decisionRequest  true  "Decision (Approved or Rejected)"
// @Success      200   {object}  expenseResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/expenses/{id}/decision [post]
func (h *ExpenseHandler) Decide(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req decisionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	decision, err := domain.ParseDecision(req.Status)
	if err != nil {
		return err
	}

	expense, err := h.service.DecideExpense(c.Request().Context(), p, req.ID, decision)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// Override handles POST /v1/expenses/:id/override.
//
// @Summary      Force an expense's status (Admin)
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Expense id"
// @Param        body  body      decisionRequest  true  "New status (Approved or Rejected)"
// @Success      200   {object}  expenseResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/expenses/{id}/override [post]
func (h *ExpenseHandler) Override(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req decisionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	status, err := domain.ParseDecision(req.Status)
	if err != nil {
		return err
	}

	expense, err := h.service.OverrideExpense(c.Request().Context(), p, req.ID, status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// Get handles GET /v1/expenses/:id.
//
// @Summary      Get an expense visible to the caller
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Expense id"
// @Success      200  {object}  expenseResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/expenses/{id} [get]
func (h *ExpenseHandler) Get(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	expense, err := h.service.GetExpense(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// Mine handles GET /v1/expenses/mine.
//
// @Summary      List the caller's submissions
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listExpensesResponse
// @Router       /v1/expenses/mine [get]
func (h *ExpenseHandler) Mine(c echo.Context) error {
	return h.list(c, domain.ViewMine)
}

// Queue handles GET /v1/expenses/queue.
//
// @Summary      List pending expenses awaiting the caller's decision
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listExpensesResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/expenses/queue [get]
func (h *ExpenseHandler) Queue(c echo.Context) error {
	return h.list(c, domain.ViewQueue)
}

// Team handles GET /v1/expenses/team.
//
// @Summary      List expenses of the caller's direct reports
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listExpensesResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/expenses/team [get]
func (h *ExpenseHandler) Team(c echo.Context) error {
	return h.list(c, domain.ViewTeam)
}

// Company handles GET /v1/expenses/company.
//
// @Summary      List every expense of the caller's company (Admin)
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listExpensesResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/expenses/company [get]
func (h *ExpenseHandler) Company(c echo.Context) error {
	return h.list(c, domain.ViewCompany)
}

func (h *ExpenseHandler) list(c echo.Context, view domain.ExpenseView) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	seq, err := h.service.List(c.Request().Context(), p, view)
	if err != nil {
		return err
	}
	items, err := collectResponses(seq)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listExpensesResponse{View: string(view), Data: items, Count: len(items)})
}
