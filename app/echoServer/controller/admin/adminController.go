package admin

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/azamazri/roomah-sub001/model"
	adminsvc "github.com/azamazri/roomah-sub001/service/admin"
	ts "github.com/azamazri/roomah-sub001/service/taaruf"
)

type Controller struct {
	Svc    adminsvc.Service
	Taaruf ts.Service
	V      *validator.Validate
	Log    *slog.Logger
}

// GET /v1/admin/cv-queue
func (h *Controller) CVQueue(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	if size < 1 || size > 100 {
		size = 20
	}

	rows, total, err := h.Svc.PendingCVs(c.Request().Context(), size, (page-1)*size)
	if err != nil {
		h.Log.Error("cv queue", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":  rows,
		"page":  page,
		"total": total,
	})
}

// POST /v1/admin/cv/:user_id/approve
func (h *Controller) ApproveCV(c echo.Context) error {
	uid, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || uid <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}

	code, err := h.Svc.ApproveCV(c.Request().Context(), uid)
	if err != nil {
		switch adminsvc.Code(err) {
		case adminsvc.ErrCVNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"code": adminsvc.Code(err)})
		case adminsvc.ErrNotInReview, adminsvc.ErrNoGender:
			return c.JSON(http.StatusConflict, echo.Map{"code": adminsvc.Code(err)})
		default:
			h.Log.Error("cv approve", "err", err, "user_id", uid)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":        "approved",
		"candidate_code": code,
	})
}

// POST /v1/admin/cv/:user_id/revise
func (h *Controller) ReviseCV(c echo.Context) error {
	uid, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || uid <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}
	var req ReviseCVReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  map[string]string{"note": "required"},
		})
	}

	if err := h.Svc.RequestRevision(c.Request().Context(), uid, req.Note); err != nil {
		switch adminsvc.Code(err) {
		case adminsvc.ErrCVNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"code": adminsvc.Code(err)})
		case adminsvc.ErrNotInReview:
			return c.JSON(http.StatusConflict, echo.Map{"code": adminsvc.Code(err)})
		case adminsvc.ErrNoteRequired:
			return c.JSON(http.StatusBadRequest, echo.Map{"code": adminsvc.Code(err)})
		default:
			h.Log.Error("cv revise", "err", err, "user_id", uid)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "revision requested"})
}

// POST /v1/admin/taaruf/sessions/:id/stage
func (h *Controller) AdvanceStage(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req AdvanceStageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  map[string]string{"stage": "one of Pengajuan Zoom1 Zoom2 Khitbah Selesai"},
		})
	}

	session, err := h.Taaruf.AdvanceStage(c.Request().Context(), id, model.Stage(req.Stage))
	if err != nil {
		switch ts.Code(err) {
		case ts.ErrSessionNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"code": ts.Code(err)})
		case ts.ErrInvalidStage:
			return c.JSON(http.StatusBadRequest, echo.Map{"code": ts.Code(err)})
		case ts.ErrSessionFinished:
			return c.JSON(http.StatusConflict, echo.Map{"code": ts.Code(err)})
		default:
			h.Log.Error("stage advance", "err", err, "session_id", id)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"session": session})
}
