package payment

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	paymentsvc "github.com/azamazri/roomah-sub001/service/payment"
)

type Controller struct {
	Svc paymentsvc.Service
	Log *slog.Logger
}

// HandleMidtrans receives the Midtrans HTTP notification. Midtrans keeps
// retrying non-200 responses, so only a bad signature is rejected; the
// handler is safe to replay.
func (h *Controller) HandleMidtrans(c echo.Context) error {
	var p paymentsvc.WebhookPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}

	res, err := h.Svc.HandleWebhook(c.Request().Context(), p)
	if err != nil {
		switch {
		case errors.Is(err, paymentsvc.ErrBadSignature):
			h.Log.Warn("webhook signature mismatch", "order_id", p.OrderID)
			return c.JSON(http.StatusForbidden, echo.Map{"message": "invalid signature"})
		case errors.Is(err, paymentsvc.ErrOrderNotFound):
			h.Log.Warn("webhook for unknown order", "order_id", p.OrderID)
			return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
		default:
			h.Log.Error("webhook reconcile error", "err", err, "order_id", p.OrderID)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "ok",
		"status":   res.FinalStatus,
		"credited": res.Credited,
	})
}
