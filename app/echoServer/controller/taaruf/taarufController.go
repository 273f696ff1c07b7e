package taaruf

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	ts "github.com/azamazri/roomah-sub001/service/taaruf"
)

type Controller struct {
	Svc ts.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/taaruf/requests
// @Summary Submit a taaruf request (charges the koin fee)
// @Success 200 {object} map[string]any
// @Failure 400,401,402,404,409,500
func (h *Controller) Submit(c echo.Context) error {
	var req SubmitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  map[string]string{"to_user_id": "required, gt 0"},
		})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.Submit(c.Request().Context(), uid, req.ToUserID)
	if err != nil {
		switch ts.Code(err) {
		case ts.ErrSelfRequest, ts.ErrSameGender:
			return c.JSON(http.StatusBadRequest, echo.Map{"code": ts.Code(err)})
		case ts.ErrCVNotApproved:
			return c.JSON(http.StatusForbidden, echo.Map{"code": ts.Code(err)})
		case ts.ErrCandidateNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"code": ts.Code(err)})
		case ts.ErrActiveTaaruf, ts.ErrTargetUnavailable, ts.ErrDuplicatePending:
			return c.JSON(http.StatusConflict, echo.Map{"code": ts.Code(err)})
		case ts.ErrInsufficientCoins:
			return c.JSON(http.StatusPaymentRequired, echo.Map{"code": ts.Code(err)})
		default:
			h.Log.Error("taaruf submit", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"request_id":    out.RequestID,
		"status":        "PENDING",
		"koin_deducted": out.KoinDeducted,
	})
}

// POST /v1/taaruf/requests/:id/accept
func (h *Controller) Accept(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	session, err := h.Svc.Accept(c.Request().Context(), id, uid)
	if err != nil {
		switch ts.Code(err) {
		case ts.ErrRequestNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"code": ts.Code(err)})
		case ts.ErrNotResponder:
			return c.JSON(http.StatusForbidden, echo.Map{"code": ts.Code(err)})
		case ts.ErrNotPending:
			return c.JSON(http.StatusConflict, echo.Map{"code": ts.Code(err)})
		default:
			h.Log.Error("taaruf accept", "err", err, "request_id", id)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"session": session})
}

// POST /v1/taaruf/requests/:id/reject
func (h *Controller) Reject(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req RejectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Reject(c.Request().Context(), id, uid, req.Reason); err != nil {
		switch ts.Code(err) {
		case ts.ErrRequestNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"code": ts.Code(err)})
		case ts.ErrNotResponder:
			return c.JSON(http.StatusForbidden, echo.Map{"code": ts.Code(err)})
		case ts.ErrNotPending:
			return c.JSON(http.StatusConflict, echo.Map{"code": ts.Code(err)})
		default:
			h.Log.Error("taaruf reject", "err", err, "request_id", id)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "rejected"})
}

// GET /v1/taaruf/requests/incoming
func (h *Controller) Incoming(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.Incoming(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("taaruf incoming", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/taaruf/requests/sent
func (h *Controller) Sent(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.Sent(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("taaruf sent", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/taaruf/sessions
func (h *Controller) Active(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.Active(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("taaruf sessions", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
