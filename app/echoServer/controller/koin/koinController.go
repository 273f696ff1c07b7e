package koin

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	paymentsvc "github.com/azamazri/roomah-sub001/service/payment"
	walletsvc "github.com/azamazri/roomah-sub001/service/wallet"
)

type Controller struct {
	Wallet  walletsvc.Service
	Payment paymentsvc.Service
	V       *validator.Validate
	Log     *slog.Logger
}

// POST /v1/koin/topups
// @Summary Create top-up order (Midtrans Snap)
// @Success 201 {object} map[string]any
// @Failure 400,401,500
func (h *Controller) CreateTopup(c echo.Context) error {
	var req CreateTopupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  map[string]string{"coin_amount": "required, gt 0"},
		})
	}
	userID := c.Get("user_id").(int64)
	res, err := h.Wallet.CreateTopup(c.Request().Context(), userID, req.CoinAmount)
	if err != nil {
		h.Log.Error("CreateTopup failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"order_id":     res.OrderID,
		"snap_token":   res.SnapToken,
		"redirect_url": res.RedirectURL,
		"coin_amount":  res.CoinAmount,
		"gross_amount": res.GrossAmount,
	})
}

// GET /v1/koin/saldo
func (h *Controller) Saldo(c echo.Context) error {
	userID := c.Get("user_id").(int64)
	saldo, err := h.Wallet.Saldo(c.Request().Context(), userID)
	if err != nil {
		h.Log.Error("Saldo failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"saldo": saldo})
}

// GET /v1/koin/ledger
func (h *Controller) Ledger(c echo.Context) error {
	userID := c.Get("user_id").(int64)
	rows, err := h.Wallet.Ledger(c.Request().Context(), userID)
	if err != nil {
		h.Log.Error("Ledger failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// POST /v1/koin/topups/:order_id/confirm
// Poll fallback when the webhook has not arrived yet.
func (h *Controller) ConfirmTopup(c echo.Context) error {
	orderID := c.Param("order_id")
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid order id"})
	}
	userID := c.Get("user_id").(int64)

	res, err := h.Payment.Confirm(c.Request().Context(), userID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, paymentsvc.ErrOrderNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
		case errors.Is(err, paymentsvc.ErrGateway):
			return c.JSON(http.StatusBadGateway, echo.Map{"message": "payment gateway unavailable"})
		default:
			h.Log.Error("ConfirmTopup failed", "err", err, "order_id", orderID)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"order_id": orderID,
		"status":   res.FinalStatus,
		"credited": res.Credited,
	})
}
