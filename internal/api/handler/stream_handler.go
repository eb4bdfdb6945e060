package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/spendline/expense-approval/internal/core/domain"
	"github.com/spendline/expense-approval/internal/core/ports"
	"github.com/spendline/expense-approval/internal/infrastructure/stream"
)

const defaultHeartbeat = 25 * time.Second

// ChangeSubscriber opens live view subscriptions.
type ChangeSubscriber interface {
	Subscribe(p domain.Principal, view domain.ExpenseView) (*stream.Subscription, error)
}

// StreamHandler serves live expense views as Server-Sent Events.
type StreamHandler struct {
	expenses  ports.ExpenseService
	hub       ChangeSubscriber
	heartbeat time.Duration
	log       zerolog.Logger
}

func NewStreamHandler(expenses ports.ExpenseService, hub ChangeSubscriber, log zerolog.Logger) *StreamHandler {
	return &StreamHandler{expenses: expenses, hub: hub, heartbeat: defaultHeartbeat, log: log}
}

// Stream handles GET /v1/expenses/stream?view=mine|queue|team|company.
//
// The first event is a "snapshot" carrying the current view; every matching
// change after that is sent as a "change" event. An expense that has left
// the view (a decided expense in the queue) arrives as a "remove" event.
// Changes can be dropped
// for slow clients, so a client should apply changes by revision and
// reconnect to resynchronise.
//
// @Summary      Live expense view (Server-Sent Events)
// @Tags         expenses
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        view          query     string  true   "mine, queue, team or company"
// @Param        access_token  query     string  false  "Bearer token for clients that cannot set headers"
// @Success      200           {object}  changeResponse
// @Failure      403           {object}  errorResponse
// @Failure      422           {object}  errorResponse
// @Router       /v1/expenses/stream [get]
func (h *StreamHandler) Stream(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	view, err := domain.ParseView(c.QueryParam("view"))
	if err != nil {
		return err
	}

	// Subscribe before the snapshot so no change between the two is lost.
	sub, err := h.hub.Subscribe(p, view)
	if err != nil {
		return err
	}
	defer sub.Close()

	ctx := c.Request().Context()
	seq, err := h.expenses.List(ctx, p, view)
	if err != nil {
		return err
	}
	snapshot, err := collectResponses(seq)
	if err != nil {
		return err
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)

	if err := writeEvent(res, "snapshot", "", listExpensesResponse{View: string(view), Data: snapshot, Count: len(snapshot)}); err != nil {
		return nil
	}

	h.log.Debug().Str("user_id", p.UserID).Str("view", string(view)).Msg("live view opened")
	defer h.log.Debug().Str("user_id", p.UserID).Str("view", string(view)).Msg("live view closed")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-sub.C:
			if !ok {
				return nil
			}
			event := "change"
			if !view.Matches(p, change.Expense) {
				event = "remove"
			}
			id := fmt.Sprintf("%s:%d", change.Expense.ID, change.Expense.Revision)
			if err := writeEvent(res, event, id, toChangeResponse(change)); err != nil {
				return nil
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

func writeEvent(res *echo.Response, event, id string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if id != "" {
		if _, err := fmt.Fprintf(res, "id: %s\n", id); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	res.Flush()
	return nil
}
