package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spendline/expense-approval/internal/core/ports"
)

// AssistantHandler serves advisory text suggestions. Responses are always
// 200; Available=false tells the client to fall back to manual input.
type AssistantHandler struct {
	assistant ports.AssistantService
}

func NewAssistantHandler(assistant ports.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

type descriptionRequest struct {
	Keywords string `json:"keywords" validate:"required,max=200"`
}

type suggestionResponse struct {
	Text      string `json:"text"`
	Available bool   `json:"available"`
	Cached    bool   `json:"cached"`
}

func toSuggestionResponse(s ports.Suggestion) suggestionResponse {
	return suggestionResponse{Text: s.Text, Available: s.Available, Cached: s.Cached}
}

// Description handles POST /v1/assistant/description.
//
// @Summary      Suggest an expense description from keywords
// @Tags         assistant
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      descriptionRequest  true  "Keywords"
// @Success      200   {object}  suggestionResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/assistant/description [post]
func (h *AssistantHandler) Description(c echo.Context) error {
	if _, err := ctxPrincipal(c); err != nil {
		return err
	}

	var req descriptionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	s := h.assistant.GenerateDescription(c.Request().Context(), req.Keywords)
	return c.JSON(http.StatusOK, toSuggestionResponse(s))
}

// Summary handles POST /v1/assistant/summary.
//
// @Summary      Summarize the caller's pending approval queue
// @Tags         assistant
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  suggestionResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/assistant/summary [post]
func (h *AssistantHandler) Summary(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	s := h.assistant.Summarize(c.Request().Context(), p)
	return c.JSON(http.StatusOK, toSuggestionResponse(s))
}
