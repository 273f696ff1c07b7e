package notification

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	notificationrepo "github.com/azamazri/roomah-sub001/repository/notification"
)

type Controller struct {
	Feed notificationrepo.Notifier
	Log  *slog.Logger
}

// GET /v1/notifications
func (h *Controller) List(c echo.Context) error {
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	uid, _ := c.Get("user_id").(int64)

	events, err := h.Feed.List(c.Request().Context(), uid, limit)
	if err != nil {
		h.Log.Error("notification list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if events == nil {
		events = []notificationrepo.Event{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": events})
}
