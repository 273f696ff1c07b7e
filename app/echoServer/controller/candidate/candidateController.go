package candidate

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/azamazri/roomah-sub001/model"
	candidatesvc "github.com/azamazri/roomah-sub001/service/candidate"
)

type Controller struct {
	Svc candidatesvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /v1/candidates
// @Summary List approved candidates, paged and filtered
// @Success 200 {object} map[string]any
// @Failure 400,401,500
func (h *Controller) Search(c echo.Context) error {
	var req SearchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid query"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	svcReq := candidatesvc.SearchReq{Page: req.Page, PageSize: req.PageSize}
	if req.Gender != "" {
		g := model.Gender(req.Gender)
		svcReq.Gender = &g
	}
	if req.AgeMin > 0 {
		svcReq.AgeMin = &req.AgeMin
	}
	if req.AgeMax > 0 {
		svcReq.AgeMax = &req.AgeMax
	}
	if req.Education != "" {
		e := model.Education(req.Education)
		svcReq.Education = &e
	}
	if req.ProvinceID > 0 {
		svcReq.ProvinceID = &req.ProvinceID
	}

	userID := c.Get("user_id").(int64)
	res, err := h.Svc.Search(c.Request().Context(), userID, svcReq)
	if err != nil {
		h.Log.Error("candidate search", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, res)
}

// GET /v1/candidates/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	userID := c.Get("user_id").(int64)

	row, err := h.Svc.Detail(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, candidatesvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "candidate not found"})
		}
		h.Log.Error("candidate detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": row})
}
