package cv

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/azamazri/roomah-sub001/model"
	cvsvc "github.com/azamazri/roomah-sub001/service/cv"
)

type Controller struct {
	Svc cvsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /v1/cv/me
func (h *Controller) Mine(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	out, err := h.Svc.Mine(c.Request().Context(), uid)
	if err != nil {
		if errors.Is(err, cvsvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "cv not found"})
		}
		h.Log.Error("cv mine", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// POST /v1/cv
// Submitting (or resubmitting) always puts the CV in REVIEW.
func (h *Controller) Submit(c echo.Context) error {
	var req SubmitCVReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	birth, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid birth_date"})
	}

	uid, _ := c.Get("user_id").(int64)
	out, err := h.Svc.Submit(c.Request().Context(), uid, cvsvc.SubmitReq{
		Gender:     model.Gender(req.Gender),
		BirthDate:  birth,
		Education:  model.Education(req.Education),
		ProvinceID: req.ProvinceID,
		City:       req.City,
		Bio:        req.Bio,
	})
	if err != nil {
		h.Log.Error("cv submit", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "submitted for review",
		"data":    out,
	})
}
